// Package apperror defines the domain errors shared by the service and HTTP layers.
//
// Each constructor wraps one of the sentinels below in an *AppError. Callers
// classify with errors.Is and read the user-facing text from AppError.Message.
package apperror

import (
	"errors"
)

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

// DuplicateEmailMessage is shown to the user when an address is already registered.
const DuplicateEmailMessage = "Email address already registered."

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable, safe to show to the client
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateEmail reports that a subscriber with this address already exists.
// The address itself is left out of the message.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: DuplicateEmailMessage,
		Field:   "email",
	}
}

// Message returns the user-facing message carried by err, if any.
func Message(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
