// Package apperr defines the error type used for user-facing failures.
package apperr

import "fmt"

// Error is an application error with a message fit for direct display.
type Error struct {
	Cause   error
	Message string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap annotates err with a display message.
func Wrap(msg string, err error) *Error {
	return &Error{Message: msg, Cause: err}
}
