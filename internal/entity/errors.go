package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrBlobNotFound  = errors.New("document not found")
	ErrLeadConverted = errors.New("lead is already a customer")
	// ErrContractDates is the storage-side end_date >= start_date check.
	ErrContractDates = errors.New("contract end date precedes start date")
)

// ConflictError is a unique constraint violation reported by the store.
// Field is empty when the violated column could not be determined.
type ConflictError struct {
	Constraint string
	Field      string
	Value      string
	Detail     string
}

func (e *ConflictError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Field != "" {
		return fmt.Sprintf("Key (%s)=(%s) already exists.", e.Field, e.Value)
	}
	return "unique constraint violated: " + e.Constraint
}

func AsConflict(err error) (*ConflictError, bool) {
	var c *ConflictError
	ok := errors.As(err, &c)
	return c, ok
}
