// Package errs defines the error kinds surfaced by the service layer.
// Every kind maps to exactly one HTTP status in the handler package.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies an error kind
type Code string

const (
	Validation     Code = "validation"
	Authentication Code = "authentication"
	Authorization  Code = "authorization"
	NotFound       Code = "not_found"
	Conflict       Code = "conflict"
	QuotaExceeded  Code = "quota_exceeded"
	Integrity      Code = "integrity"
	Internal       Code = "internal"
)

// Quota is the payload attached to QuotaExceeded errors
type Quota struct {
	Limit   int64
	Current int64
	Plan    string
}

// Error is a classified service error
type Error struct {
	Code    Code
	Message string
	// Field names the offending input for Validation errors
	Field string
	Quota *Quota
	Err   error
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

// CodeOf returns the kind of err, or Internal when err carries none
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// As extracts the classified error from err
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func Invalid(field, msg string) *Error {
	return &Error{Code: Validation, Field: field, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Code: Authentication, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: Authorization, Message: msg}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: NotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Code: Conflict, Message: fmt.Sprintf(format, args...)}
}

func OverQuota(limit, current int64, plan string) *Error {
	return &Error{
		Code:    QuotaExceeded,
		Message: "Note limit reached",
		Quota:   &Quota{Limit: limit, Current: current, Plan: plan},
	}
}

// IntegrityFault signals server-side data inconsistency
func IntegrityFault(msg string, err error) *Error {
	return &Error{Code: Integrity, Message: msg, Err: err}
}

// Wrap classifies an unexpected failure as Internal
func Wrap(err error, msg string) *Error {
	return &Error{Code: Internal, Message: msg, Err: err}
}
