// Package domainerrors defines coded errors shared by services, transport and the
// portal client. Codes are stable strings; HTTP status mapping lives in
// pkg/platform/httputil and the client-side reverse mapping in internal/portal/client.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure independent of transport.
type Code string

const (
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeBadRequest          Code = "bad_request"
	CodeInvalidInput        Code = "invalid_input"
	CodeValidation          Code = "validation_error"
	CodeInvalidDocumentType Code = "invalid_document_type"
	CodeVerificationFailed  Code = "verification_failed"
	CodeRetrievalFailed     Code = "retrieval_failed"
	CodeNetworkFailure      Code = "network_failure"
	CodeTooManyRequests     Code = "too_many_requests"
	CodeTimeout             Code = "timeout"
	CodeInvariantViolation  Code = "invariant_violation"
	CodeInternal            Code = "internal_error"
)

// Error is a coded domain error. Err is optional and carries the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports equality on code and message so tests can compare against a freshly
// constructed error with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error. A nil err yields a plain
// coded error.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in the chain, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in the chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// MessageOf returns the user-facing message of the outermost coded error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
