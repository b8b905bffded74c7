package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input, with field-level detail
// where available. It is always raised before any mutation.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports a vehicle that is unavailable for the requested
// window, or a concurrent double-booking detected inside the create
// transaction.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// UnauthorizedError reports a role, ownership or access-token mismatch.
type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

// StateError reports an operation that the current lifecycle state forbids:
// an invalid status transition, a capture against a non-capturable payment,
// or a capture amount exceeding the authorization.
type StateError struct {
	Msg string
}

func (e StateError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "invalid state"
}

// ProcessorError reports a payment gateway rejection or failure. It is
// recorded on the payment row and surfaced to the caller, never retried
// automatically.
type ProcessorError struct {
	Code     string
	Msg      string
	IntentID string
	Raw      []byte
	Err      error
}

func (e ProcessorError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("processor error (%s): %s", e.Code, e.Msg)
	}
	if e.Msg != "" {
		return "processor error: " + e.Msg
	}
	return "processor error"
}

func (e ProcessorError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

func IsProcessor(err error) bool {
	var target *ProcessorError
	return errors.As(err, &target)
}

// AsProcessor returns the ProcessorError wrapped in err, if any.
func AsProcessor(err error) (*ProcessorError, bool) {
	var target *ProcessorError
	ok := errors.As(err, &target)
	return target, ok
}
