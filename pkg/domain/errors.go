package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrRemote is matched by every *RemoteError via errors.Is.
var ErrRemote = errors.New("remote call failed")

// ErrKeyNotFound is returned by key/value stores when a key is absent.
var ErrKeyNotFound = errors.New("key not found")

// ErrCheckoutNotFound is returned by backends for unknown or expired checkout ids.
var ErrCheckoutNotFound = errors.New("checkout not found")

// ErrCheckoutCompleted is returned by backends that reject mutations of finalized checkouts.
var ErrCheckoutCompleted = errors.New("checkout already completed")

// ErrLineItemNotFound is returned by backends when a line item id is unknown.
var ErrLineItemNotFound = errors.New("line item not found")

// ErrVariantNotFound is returned by backends when a variant id is unknown.
var ErrVariantNotFound = errors.New("variant not found")

// ErrCheckoutUnset is returned when a mutation is attempted before a checkout was reconciled.
var ErrCheckoutUnset = errors.New("checkout is not initialized")

// ErrNoCheckoutURL is returned by ProceedToCheckout when the checkout has no web URL.
var ErrNoCheckoutURL = errors.New("checkout has no web url")

// Validation reasons surfaced to callers.
const (
	ReasonVariantRequired  = "variant required"
	ReasonLineItemRequired = "line item required"
	ReasonQuantityInvalid  = "quantity must be >= 1"
)

// ValidationError reports malformed caller input. It is raised before any
// lock acquisition or remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// RemoteError reports the failure of a single remote call.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRemote) hold for any RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// NewRemoteError wraps err as the failure of op.
func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}
