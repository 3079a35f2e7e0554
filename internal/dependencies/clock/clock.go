// Package clock abstracts wall-clock reads so match timers and mail
// timestamps can be driven from tests.
package clock

import "time"

// Clock reports the current time and elapsed durations
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

type system struct{}

// New returns the system clock
func New() Clock {
	return system{}
}

func (system) Now() time.Time {
	return time.Now()
}

func (system) Since(t time.Time) time.Duration {
	return time.Since(t)
}
