package session

import (
	"strconv"

	"github.com/mcoot/gomoku-server/internal/model"
)

const (
	msgWelcome       = "Welcome to Gomoku Server!\nType 'help' or '?' for a list of commands."
	msgLoginRequired = "Please login first using 'login <username> <password>' or 'guest'."
	msgEmptyCommand  = "Empty command"
	msgGoodbye       = "Goodbye!"
	msgGameNotFound  = "Error: Game not found."

	// Auth
	msgLoginFailed       = "Login failed. Invalid username or password."
	msgGuestLogin        = "Logged in as guest. You can register a new account using 'register <username> <password>'."
	msgRegisterNotGuest  = "You must be logged in as guest to register."
	msgRegisterFailed    = "Registration failed. Username already exists or is invalid."
	msgGuestCannotPlay   = "Guests cannot play games. Please register an account."
	msgGuestCannotShout  = "Guests cannot shout messages. Please register an account."
	msgGuestCannotTell   = "Guests cannot send private messages. Please register an account."
	msgGuestCannotBlock  = "Guests cannot block users. Please register an account."
	msgGuestCannotUnblk  = "Guests cannot unblock users. Please register an account."
	msgGuestCannotMail   = "Guests cannot use mail. Please register an account."
	msgGuestCannotInfo   = "Guests cannot set personal information. Please register an account."
	msgGuestCannotPasswd = "Guests cannot change password. Please register an account."

	// Play
	msgInvalidTimeLimit  = "Invalid time limit. Using default (600 seconds)."
	msgSelfMatch         = "You cannot play against yourself."
	msgBadColor          = "Color must be 'b' for black or 'w' for white."
	msgAlreadyInGame     = "You are already in a game."
	msgMoveNotInGame     = "You are not in a game. Join a game first to make moves."
	msgOutOfBounds       = "Invalid move: out of bounds. The board is 15x15 (A1 to O15)."
	msgNotYourTurn       = "It's not your turn to move. Please wait for your opponent."
	msgOccupied          = "Invalid move: that position is already occupied."
	msgNotInGame         = "You are not in a game."
	msgResigned          = "You have resigned the game."
	msgNotInOrObserving  = "You are not in or observing a game."
	msgInvalidGameNumber = "Invalid game number."
	msgObserveWhilePlay  = "You cannot observe while playing a game."
	msgNotObservingAny   = "You are not observing any game."
	msgUnobserved        = "You are no longer observing the game."
	msgNoGames           = "No games in progress."

	// Chat
	msgMessageSent   = "Message sent."
	msgNotObserving  = "You are not observing a game."
	msgCommentSent   = "Comment sent."
	msgQuietEnabled  = "Quiet mode enabled. You will not receive broadcast messages."
	msgQuietDisabled = "Quiet mode disabled. You will receive broadcast messages."
	msgNoUsersOnline = "No users online."

	// Mail
	msgMailboxEmpty     = "Your mailbox is empty."
	msgInvalidMailID    = "Invalid message number."
	msgMailNotFound     = "Message not found."
	msgMailDeleted      = "Message deleted."
	msgMailPrompt       = "Enter your message. End with a line containing only a period (.)"
	msgMailTimedOut     = "Mail composition timed out. Message discarded."
	msgMailBodyTerminus = "."

	// Profile
	msgInfoUpdated     = "Your information has been updated."
	msgPasswordChanged = "Your password has been changed."

	// Usage
	usageLogin      = "Usage: login <username> <password>"
	usageRegister   = "Usage: register <username> <password>"
	usageMatch      = "Usage: match <name> <b|w> [t]"
	usageObserve    = "Usage: observe <game_num>"
	usageShout      = "Usage: shout <message>"
	usageTell       = "Usage: tell <name> <message>"
	usageKibitz     = "Usage: kibitz <message> or ' <message>"
	usageBlock      = "Usage: block <id>"
	usageUnblock    = "Usage: unblock <id>"
	usageReadMail   = "Usage: readmail <msg_num>"
	usageDeleteMail = "Usage: deletemail <msg_num>"
	usageMail       = "Usage: mail <id> <title>"
	usageInfo       = "Usage: info <message>"
	usagePasswd     = "Usage: passwd <new>"
)

func unknownCommand(verb string) string {
	return "Unknown command: " + verb + ". Type 'help' or '?' for a list of commands."
}

func userNotFound(name string) string {
	return "User not found: " + name
}

func gameNotFound(id int) string {
	return "Game not found: " + strconv.Itoa(id)
}

func timeoutEnded(winner string) string {
	return "Game ended: " + winner + " wins due to timeout."
}

func gameStarted(snap model.MatchSnapshot) string {
	return "Game " + snap.ID.String() + " started: " + snap.Black + " (Black) vs " + snap.White + " (White)"
}

func wonGame(winner string) string {
	return winner + " has won the game!"
}
