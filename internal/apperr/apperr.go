// Package apperr defines the error taxonomy returned by every public placement operation.
package apperr

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/campus-placement/internal/store"
)

// Kind classifies a failure for the caller.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindAuthorization  Kind = "authorization"
	KindConflict       Kind = "conflict"
	KindInfrastructure Kind = "infrastructure"
)

// Error is a classified failure with a message safe to show to the caller.
// Cause is kept for logging and errors.Is/As, never for the response body.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation reports a missing or malformed input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Invalid converts a struct validation failure into a validation error that
// names the first offending field.
func Invalid(err error) *Error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("validation error: %s - %s", ve[0].Field(), ve[0].Tag()), Cause: err}
	}
	return &Error{Kind: KindValidation, Message: "validation error: invalid request", Cause: err}
}

// NotFound reports a referenced record that does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports a role or scope denial.
func Authorization(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports an invalid transition or a uniqueness violation.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Infrastructure wraps a store or dependency failure.
func Infrastructure(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindInfrastructure, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the kind of err, or KindInfrastructure for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// From classifies any error. Store sentinels map to their caller-facing kind;
// anything unrecognised becomes an infrastructure failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, store.ErrMalformedID):
		return &Error{Kind: KindValidation, Message: "malformed identifier", Cause: err}
	case errors.Is(err, store.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: "record already exists", Cause: err}
	default:
		return &Error{Kind: KindInfrastructure, Message: "storage unavailable", Cause: err}
	}
}

// Guard is deferred at the top of every public operation so that no
// unclassified error or panic leaves it.
//
//	func (s *Service) Op(ctx context.Context) (err error) {
//		defer apperr.Guard(&err)
//		...
//	}
func Guard(err *error) {
	if r := recover(); r != nil {
		*err = &Error{Kind: KindInfrastructure, Message: "internal error", Cause: fmt.Errorf("panic: %v", r)}
		return
	}
	if *err != nil {
		*err = From(*err)
	}
}
