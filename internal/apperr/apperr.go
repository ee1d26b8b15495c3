package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the stable categories surfaced to
// callers. Handlers map kinds to HTTP statuses; services decide retriability
// by kind, never by inspecting driver errors directly.
type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
	KindWriteConflict   Kind = "write_conflict"
	KindWriteFailed     Kind = "write_failed"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "authentication required"}
}

func WriteConflict(err error) *Error {
	return &Error{Kind: KindWriteConflict, Message: "write conflict", Err: err}
}

func WriteFailed(resource string, err error) *Error {
	return &Error{Kind: KindWriteFailed, Message: "failed to write " + resource, Err: err}
}

// KindOf returns the kind carried by err, or KindWriteFailed for anything
// that is not an *Error (raw datastore errors never reach callers untagged).
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindWriteFailed
}

// Retriable reports whether the transaction runner may re-execute the work
// that produced err.
func Retriable(err error) bool {
	return KindOf(err) == KindWriteConflict
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindWriteConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
