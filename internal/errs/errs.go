// Package errs defines the console's error taxonomy. Validation and state
// errors are raised before any request is built; transport and remote errors
// wrap what the backends returned.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Rejection reasons attached to validation failures of composite
// operations, so callers can tell "inputs missing" from "price computed to
// zero or negative".
const (
	ReasonInputsMissing    = "inputs_missing"
	ReasonNonpositiveTotal = "nonpositive_total"
)

// FieldError describes a single invalid draft field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a local precondition failure, caught before any
// request is sent.
type ValidationError struct {
	Reason string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a single-field validation error.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ValidationReason builds a validation error carrying only a reason code.
func ValidationReason(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// InvalidStateError means the operation is not permitted given the current
// locally-known entity state, e.g. joining a completed group-buy.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// TransportError is a network or connectivity failure; no response was
// received.
type TransportError struct {
	Service string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError means the backend rejected the request; it carries the status
// and the raw body text so the message can be relayed verbatim.
type RemoteError struct {
	Service string
	Status  int
	Body    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Body)
}

// AuthError is the 401-equivalent specialization of RemoteError. The
// orchestrator clears the stored credential whenever one surfaces.
type AuthError struct {
	RemoteError
}

// Remote builds the right remote error for a non-2xx response.
func Remote(service string, status int, body string) error {
	re := RemoteError{Service: service, Status: status, Body: body}
	if status == http.StatusUnauthorized {
		return &AuthError{RemoteError: re}
	}
	return &re
}

// IsValidation reports whether err is a local precondition failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidState reports whether err is a local state rejection.
func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is a remote 404. Delete operations treat
// this as having already reached the desired end state.
func IsNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// RemoteStatus returns the backend status carried by err, or 0 if err is
// not a remote rejection.
func RemoteStatus(err error) int {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Status
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
