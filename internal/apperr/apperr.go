// Package apperr defines the error taxonomy shared by the stores,
// collaborator clients and HTTP handlers. Every failure surfaced to a
// caller carries a stable machine-readable kind plus a human message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable error category.
type Kind string

const (
	Unauthorized Kind = "unauthorized"
	NotFound     Kind = "not_found"
	Validation   Kind = "validation"
	Precondition Kind = "precondition_failed"
	RateLimited  Kind = "rate_limited"
	Upstream     Kind = "upstream_error"
	Internal     Kind = "internal"
)

// Error is a categorized application error. Details carries optional
// structured context for the response body, such as a progress summary
// when goal creation is blocked.
type Error struct {
	Kind    Kind
	Message string
	Details any
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// WithDetails returns a copy carrying structured response context.
func (e *Error) WithDetails(details any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// KindOf extracts the kind from any error chain. Uncategorized errors
// are reported as Internal so unexpected store failures never leak a
// misleading status.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// DetailsOf extracts structured context from an error chain, if any.
func DetailsOf(err error) any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Validation:
		return http.StatusBadRequest
	case Precondition:
		return http.StatusConflict
	case RateLimited:
		return http.StatusTooManyRequests
	case Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
