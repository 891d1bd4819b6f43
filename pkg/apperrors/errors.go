// Package apperrors defines the transport-agnostic error taxonomy shared by
// every component of the matcher core. Callers classify an error by Kind
// rather than inspecting strings, so the eventual transport layer (HTTP,
// gRPC, a CLI) can map Kind to its own status vocabulary in one place.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure behind an Error. It mirrors the five
// status classes a caller needs to distinguish: something the caller sent is
// wrong, an upstream dependency failed, an upstream dependency answered with
// something unusable, storage failed, or we don't know what happened.
type Kind string

const (
	// KindInvalidInput means the caller supplied something the component
	// cannot act on (a malformed session, an empty prompt, an out-of-range
	// threshold). Retrying the same input will not help.
	KindInvalidInput Kind = "invalid_input"

	// KindExternalService means a call to an external dependency (the LLM
	// provider, Redis) failed at the transport level. Retrying may help.
	KindExternalService Kind = "external_service"

	// KindMalformedResponse means an external dependency replied but its
	// response could not be interpreted (unparsable JSON, missing fields).
	KindMalformedResponse Kind = "malformed_response"

	// KindStorage means a database operation failed.
	KindStorage Kind = "storage"

	// KindInternal means an invariant we expected to hold did not, and the
	// failure does not fit any of the above. Should be rare in practice.
	KindInternal Kind = "internal"
)

// Error is the concrete error type returned by every component. It wraps an
// underlying cause and attaches a Kind, so callers can both classify the
// failure with errors.As and print a useful message with Unwrap intact.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New constructs an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error that carries an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind of err if it is, or wraps, an *Error. Any other
// error is reported as KindInternal, since its origin is unaccounted for.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrNotFound is a sentinel returned by catalog and backlog lookups for a
// missing row, checked with errors.Is rather than pattern-matched by Kind.
var ErrNotFound = errors.New("not found")
