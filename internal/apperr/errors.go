package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for translation at the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindDelivery
)

// Error is the single error type recovered by handlers. Validation and
// conflict errors carry field-keyed messages; the rest carry a detail line.
type Error struct {
	Kind   Kind
	Detail string
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed: %v", e.Fields)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a field-keyed validation error.
func Validation(field, message string) *Error {
	return &Error{
		Kind:   KindValidation,
		Fields: map[string][]string{field: {message}},
	}
}

// ValidationFields wraps an already-assembled field error map.
func ValidationFields(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Fields: fields}
}

func InvalidCredentials(detail string) *Error {
	return &Error{Kind: KindInvalidCredentials, Detail: detail}
}

func Unauthenticated(detail string) *Error {
	return &Error{Kind: KindUnauthenticated, Detail: detail}
}

func Forbidden(detail string) *Error {
	return &Error{Kind: KindForbidden, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

// Conflict names the offending field so clients can key off it.
func Conflict(field, message string) *Error {
	return &Error{
		Kind:   KindConflict,
		Fields: map[string][]string{field: {message}},
	}
}

func Delivery(err error) *Error {
	return &Error{Kind: KindDelivery, Detail: "confirmation email delivery failed", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// As extracts an *Error from err's chain, or nil.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Status maps an error to the HTTP status it is reported with.
func Status(err error) int {
	ae := As(err)
	if ae == nil {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the response body for an error: {field: [messages]} for
// field-keyed errors, {detail: message} otherwise.
func Body(err error) any {
	ae := As(err)
	if ae == nil {
		return map[string]string{"detail": "internal server error"}
	}
	if len(ae.Fields) > 0 {
		return ae.Fields
	}
	if ae.Kind == KindInternal {
		return map[string]string{"detail": "internal server error"}
	}
	return map[string]string{"detail": ae.Detail}
}
