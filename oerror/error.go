package oerror

import "fmt"

// Error is the error type returned at the edges of the movement core: settings
// and level loading, archive restore and snapshot decoding.
type Error struct {
	Err   string
	cause error
}

// New creates an error from a format string.
func New(format string, args ...any) *Error {
	return &Error{Err: fmt.Sprintf(format, args...)}
}

// Wrap creates an error from a format string that unwraps to cause.
func Wrap(cause error, format string, args ...any) *Error {
	return &Error{Err: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Err + ": " + e.cause.Error()
	}
	return e.Err
}

func (e *Error) Unwrap() error {
	return e.cause
}
