package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service matches exactly one of them via errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream error")
	ErrInternal   = errors.New("internal error")

	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error is a coded failure; Code is what clients see in the "error" field.
type Error struct {
	Kind    error
	Code    string
	Message string
}

func NewError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// UpstreamError is returned when a third-party endpoint answers with a failure.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func (e *UpstreamError) Unwrap() error { return e.Err }

type internalError struct {
	op  string
	err error
}

// Internal wraps an unexpected storage or programming failure.
func Internal(op string, err error) error {
	return &internalError{op: op, err: err}
}

func (e *internalError) Error() string { return e.op + ": " + e.err.Error() }

func (e *internalError) Is(target error) bool { return target == ErrInternal }

func (e *internalError) Unwrap() error { return e.err }

// Code returns the client-facing code of err.
func Code(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	}
	return "internal_error"
}
