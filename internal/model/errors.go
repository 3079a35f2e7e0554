package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAlreadyOnline      = errors.New("account is already online")
	ErrAlreadyBlocked     = errors.New("user is already blocked")
	ErrNotBlocked         = errors.New("user is not blocked")
	ErrNotOnline          = errors.New("account is not online")
	ErrAlreadyPlaying     = errors.New("account is already in a match")
	ErrSelfMatch          = errors.New("cannot play against yourself")
	ErrConnectionNotBound = errors.New("connection is not bound to an identity")

	// Match errors
	ErrMatchNotFound = errors.New("match not found")
	ErrMatchFinished = errors.New("match is already finished")
	ErrNotAPlayer    = errors.New("identity is not a player in this match")
	ErrNotYourTurn   = errors.New("not this player's turn")
	ErrOutOfBounds   = errors.New("position is out of bounds")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrTimeExpired   = errors.New("player's time has expired")
	ErrInvalidMove   = errors.New("invalid move token")

	// Mail errors
	ErrMailNotFound = errors.New("mail not found")
)

// PlayerError ties a failure to the player it concerns, e.g. which side of a
// challenge was already busy.
type PlayerError struct {
	Name string
	Err  error
}

func (e *PlayerError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}
