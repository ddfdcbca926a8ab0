// Package apperr is the closed set of failures the API reports to clients.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class. Its value is the errorCode sent to clients.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_FAILED"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindDuplicateRequest Kind = "DUPLICATE_REQUEST"
	KindMethodNotAllowed Kind = "METHOD_NOT_ALLOWED"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindPersistence      Kind = "PERSISTENCE_ERROR"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// Error is a typed failure with a client-facing message.
type Error struct {
	Kind    Kind
	Field   string // offending payload field, validation only
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports invalid client input on field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NotFound reports a missing store or item.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness clash such as a taken store name.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// DuplicateRequest reports a request id that was already processed or is in flight.
func DuplicateRequest(requestID string) *Error {
	return &Error{
		Kind:    KindDuplicateRequest,
		Message: fmt.Sprintf("Request with ID %s has already been processed", requestID),
	}
}

// MethodNotAllowed reports an unsupported HTTP method on a route.
func MethodNotAllowed(method string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: fmt.Sprintf("Method %s not allowed", method)}
}

// RateLimited reports a client exceeding the request budget.
func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Message: "Too many requests, please retry later"}
}

// Persistence wraps a backend failure.
func Persistence(message string, err error) *Error {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
