package services

import (
	"errors"
	"fmt"
)

// Root errors. Every error returned by this package wraps exactly one of
// them, so callers classify with errors.Is or Kind.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrNotifierFailure = errors.New("notification delivery failed")
)

var (
	ErrInvalidCredentials = wrapErr(ErrUnauthenticated, "invalid credentials")
	ErrTokenExpired       = wrapErr(ErrUnauthenticated, "token expired")
	ErrInvalidToken       = wrapErr(ErrUnauthenticated, "invalid token")
	ErrUserInactive       = wrapErr(ErrUnauthenticated, "user inactive or deleted")

	ErrUserNotFound     = wrapErr(ErrNotFound, "user not found")
	ErrProfileNotFound  = wrapErr(ErrNotFound, "profile not found")
	ErrComputerNotFound = wrapErr(ErrNotFound, "computer not found")
	ErrChangeNotFound   = wrapErr(ErrNotFound, "change record not found")
	ErrTokenNotFound    = wrapErr(ErrNotFound, "no active tokens found for this user")

	ErrUserExists    = wrapErr(ErrConflict, "user already exists")
	ErrLastSuperuser = wrapErr(ErrConflict, "cannot remove the last active superuser")
)

type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotifierFailure Kind = "notifier_failure"
	KindInternal        Kind = "internal"
)

// KindOf classifies err into one of the fixed error kinds.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotifierFailure):
		return KindNotifierFailure
	default:
		return KindInternal
	}
}

// kindError keeps the short message of a named error while still matching
// its root with errors.Is.
type kindError struct {
	root error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.root }

func wrapErr(root error, msg string) error {
	return &kindError{root: root, msg: msg}
}

func validationErrorf(format string, args ...any) error {
	return wrapErr(ErrValidation, fmt.Sprintf(format, args...))
}

func conflictErrorf(format string, args ...any) error {
	return wrapErr(ErrConflict, fmt.Sprintf(format, args...))
}
