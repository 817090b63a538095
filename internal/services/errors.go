package services

import (
	"errors"
)

// Error kinds. Every error a service returns to a caller matches exactly one
// of these with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("auth error")
	ErrDelivery   = errors.New("delivery error")
	ErrGeneration = errors.New("generation error")
	ErrNetwork    = errors.New("network error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	ErrInvalidCredentials   = errors.New("invalid login credentials")
	ErrEmailTaken           = errors.New("user already registered")
	ErrAccountNotFound      = errors.New("account not found")
	ErrSessionInvalid       = errors.New("session is invalid or expired")
)

// Error carries a kind, a caller-facing message and the underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func validationError(message string) error {
	return newError(ErrValidation, message, nil)
}

func authError(cause error) error {
	return newError(ErrAuth, cause.Error(), cause)
}

func forbiddenError(message string) error {
	return newError(ErrForbidden, message, nil)
}

func notFoundError(message string) error {
	return newError(ErrNotFound, message, nil)
}

// asAuthError keeps an existing *Error as is and files anything else under ErrAuth.
func asAuthError(err error) error {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return err
	}
	return newError(ErrAuth, err.Error(), err)
}

// KindOf returns the kind err was filed under, or nil for foreign errors.
func KindOf(err error) error {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Kind
	}
	return nil
}
