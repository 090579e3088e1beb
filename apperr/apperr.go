// Package apperr defines the domain error taxonomy shared by services and
// handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	// KindForbidden is an auth failure caused by ownership rather than by
	// missing or bad credentials.
	KindForbidden
	KindNotFound
	KindExternal
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

func Validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func Auth(msg string) error       { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }

// External wraps a failure of the image host or another outside service.
func External(msg string, err error) error {
	return &Error{Kind: KindExternal, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps err to the HTTP status and client message. Internal and external
// failures get a generic message; the caller is expected to log the cause.
func Status(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, "Internal Server Error"
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest, e.Message
	case KindAuth:
		return http.StatusUnauthorized, e.Message
	case KindForbidden:
		return http.StatusForbidden, e.Message
	case KindNotFound:
		return http.StatusNotFound, e.Message
	case KindExternal:
		return http.StatusInternalServerError, e.Message
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
