package utils

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalid       = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrUnprocessable = errors.New("unprocessable")
	ErrUpstream      = errors.New("upstream failure")
)

// Error carries a client-facing message and the kind used for the status code.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func NotFound(msg string) error  { return &Error{Kind: ErrNotFound, Msg: msg} }
func Conflict(msg string) error  { return &Error{Kind: ErrConflict, Msg: msg} }
func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }
func Upstream(msg string) error  { return &Error{Kind: ErrUpstream, Msg: msg} }
func Unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Msg: msg}
}

func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrInvalid, Msg: fmt.Sprintf(format, args...)}
}

// Status maps an error chain to an HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// InputError collects per-field validation messages.
type InputError struct {
	fields map[string][]string
}

func NewInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

func AsInputError(err error) *InputError {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie
	}
	return nil
}

func (ie *InputError) Add(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Empty() bool { return len(ie.fields) == 0 }

// OrNil returns nil when nothing was added, so callers can `return ie.OrNil()`.
func (ie *InputError) OrNil() error {
	if ie.Empty() {
		return nil
	}
	return ie
}

func (ie *InputError) Fields() map[string][]string { return ie.fields }

func (ie *InputError) Error() string {
	keys := make([]string, 0, len(ie.fields))
	for k := range ie.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(ie.fields[k], "; "))
	}
	return strings.Join(parts, ", ")
}

func (ie *InputError) Unwrap() error { return ErrInvalid }

func Unprocessable(msg string) error {
	return &Error{Kind: ErrUnprocessable, Msg: msg}
}
