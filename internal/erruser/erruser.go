// Package erruser provides errors that print a plain user-facing message
// while keeping the technical cause reachable through errors.Unwrap for
// verbose logging.
package erruser

import "errors"

// Err pairs a user-facing message with an optional underlying cause.
// Error() returns only the message; the cause never leaks into the
// primary output line.
type Err struct {
	Msg   string
	Cause error
}

// Error returns the user-facing message.
func (e *Err) Error() string {
	if e == nil {
		return ""
	}
	return e.Msg
}

// Unwrap returns the underlying cause, or nil.
func (e *Err) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New builds an error with the given user-facing message. A non-nil cause
// is wrapped so errors.Is/As still match it; a nil cause yields a plain
// error with no Unwrap.
func New(msg string, cause error) error {
	if cause == nil {
		return errors.New(msg)
	}
	return &Err{Msg: msg, Cause: cause}
}
