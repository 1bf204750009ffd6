package errors

import (
	"fmt"

	"github.com/FilipposDe/shopify-fields-app/internal/domain"
)

// GenericMessage is shown to merchants for failures they cannot act on
const GenericMessage = "Unexpected error. Please try again later."

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (duplicate field name, submission in flight)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid sync state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.SyncState
	To   domain.SyncState
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrRemote wraps any failure calling the Admin API
type ErrRemote struct {
	Op  string
	Err error
}

func (e *ErrRemote) Error() string {
	return fmt.Sprintf("shopify %s: %v", e.Op, e.Err)
}

func (e *ErrRemote) Unwrap() error {
	return e.Err
}

// ErrMetafieldLimit is returned when a product has more app metafields than a single read returns
type ErrMetafieldLimit struct {
	ProductID string
	Count     int
}

func (e *ErrMetafieldLimit) Error() string {
	return "Product exceeded number of metafields."
}
