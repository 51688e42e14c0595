package service

import (
	"errors"
	"fmt"

	"github.com/schalkje/DiagramDesigner/internal/storage"
)

// Kind classifies a service failure. The API maps each kind onto one HTTP
// status and uses the kind string as the "error" member of the body.
type Kind string

const (
	KindValidation           Kind = "validation_error"
	KindUnauthenticated      Kind = "authentication_error"
	KindNotFound             Kind = "not_found"
	KindConfirmationRequired Kind = "confirmation_required"
)

// Error is the typed error returned by every service operation that fails
// for a reason the caller can act on. Anything else is an internal error.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages keyed by json name.
	Fields map[string]string
	// Impact is set on KindConfirmationRequired.
	Impact *DeleteImpact
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports bad input, including duplicate names.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationFields reports bad input with per-field detail.
func ValidationFields(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound reports that an addressed row does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated reports bad credentials or an unusable account.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// ConfirmationRequired refuses a cascading delete until the caller confirms.
func ConfirmationRequired(impact *DeleteImpact) *Error {
	return &Error{Kind: KindConfirmationRequired, Message: impact.Message, Impact: impact}
}

// IsKind reports whether err is a service Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// notFoundOr converts storage.ErrNotFound into a NotFound error for what,
// and leaves other errors untouched.
func notFoundOr(err error, format string, args ...any) error {
	if storage.IsNotFound(err) {
		e := NotFound(format, args...)
		e.Err = err
		return e
	}
	return err
}

// writeErr maps constraint violations raised by a write onto validation
// errors. They arise when a concurrent writer wins a uniqueness race or a
// parent disappears between the check and the insert.
func writeErr(err error, duplicate string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrDuplicate):
		return &Error{Kind: KindValidation, Message: duplicate, Err: err}
	case errors.Is(err, storage.ErrForeignKey):
		return &Error{Kind: KindValidation, Message: "Referenced object does not exist", Err: err}
	case storage.IsNotFound(err):
		return &Error{Kind: KindNotFound, Message: "Object not found", Err: err}
	}
	return err
}
