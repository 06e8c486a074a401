// Package domainerrors defines the closed set of error kinds services return.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate them
// into *Error values carrying a Code so transport code can pick an HTTP status
// without inspecting messages.
package domainerrors

import (
	"errors"
	"strings"
)

// Code identifies an error kind.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvalidState       Code = "invalid_state"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"
)

// Error is the typed error returned across service boundaries.
type Error struct {
	Code    Code
	Message string
	// Details holds every collected validation failure, not just the first.
	Details []string
	// Reason is a machine-readable sub-kind, e.g. the forbidden denial type.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Validation creates a validation error carrying every collected failure.
func Validation(msg string, details []string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Forbidden creates a forbidden error tagged with a denial reason.
func Forbidden(reason, msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg, Reason: reason}
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Err
			continue
		}
		return false
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost *Error, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf returns the collected validation details of the outermost *Error.
func DetailsOf(err error) []string {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

// ReasonOf returns the reason of the outermost *Error.
func ReasonOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Reason
	}
	return ""
}

// Collector accumulates validation failures so callers can report all of them at once.
type Collector struct {
	prefix  string
	details []string
}

// NewCollector returns a collector whose entries are prefixed with prefix (may be empty).
func NewCollector(prefix string) *Collector {
	return &Collector{prefix: prefix}
}

// Add records a failure.
func (c *Collector) Add(msg string) {
	if c.prefix != "" {
		msg = c.prefix + ": " + msg
	}
	c.details = append(c.details, msg)
}

// Merge appends the details of another collector.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.details = append(c.details, other.details...)
}

// Details returns the collected failures.
func (c *Collector) Details() []string {
	return c.details
}

// Empty reports whether nothing was collected.
func (c *Collector) Empty() bool {
	return len(c.details) == 0
}

// Err returns a validation error if anything was collected, nil otherwise.
func (c *Collector) Err(msg string) error {
	if c.Empty() {
		return nil
	}
	return Validation(msg, c.details)
}
