package common

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by services and handlers. Services wrap these with
// context using fmt.Errorf("%w: ..."); handlers map them to HTTP statuses.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrUnsupported     = errors.New("operation not supported by identity provider")
)

// Validation returns an ErrValidation carrying a client facing message.
func Validation(message string) error {
	return &validationError{message: message}
}

type validationError struct {
	message string
}

func (e *validationError) Error() string { return e.message }

func (e *validationError) Unwrap() error { return ErrValidation }

// ValidationMessage extracts the client message from a Validation error.
func ValidationMessage(err error) (string, bool) {
	var ve *validationError
	if errors.As(err, &ve) {
		return ve.message, true
	}
	return "", false
}

// NotFound wraps ErrNotFound with the missing resource.
func NotFound(resource, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, resource, id)
}
