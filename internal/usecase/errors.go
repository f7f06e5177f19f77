package usecase

import (
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "CONFLICT"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL_ERROR"
)

// DomainError is a failure the caller can act on. Errors lists the
// offending fields for validation and conflict failures.
type DomainError struct {
	Code    string
	Message string
	Errors  ValidationErrors
}

func (e *DomainError) Error() string {
	if len(e.Errors) > 0 {
		return e.Message + ": " + e.Errors.Error()
	}
	return e.Message
}

func IsDomainError(err error) bool {
	var d *DomainError
	return errors.As(err, &d)
}

func AsDomainError(err error) (*DomainError, bool) {
	var d *DomainError
	ok := errors.As(err, &d)
	return d, ok
}

// TechnicalError wraps an infrastructure failure.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var t *TechnicalError
	return errors.As(err, &t)
}

func invalid(errs ValidationErrors) *DomainError {
	return &DomainError{Code: CodeValidation, Message: "validation failed", Errors: errs}
}

func notFound(what string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: what + " not found"}
}

// conflict reports a storage uniqueness violation against the field it
// guards, or as a non-field error when the field is unknown.
func conflict(c *entity.ConflictError) *DomainError {
	return &DomainError{
		Code:    CodeConflict,
		Message: "unique constraint violated",
		Errors:  ValidationErrors{{Field: c.Field, Message: c.Error()}},
	}
}

// classify maps repository errors to what the caller sees. what names the
// entity for not-found errors.
func classify(err error, what, op string) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	if c, ok := entity.AsConflict(err); ok {
		return conflict(c)
	}
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return notFound(what)
	case errors.Is(err, entity.ErrContractDates):
		return invalid(ValidationErrors{{Message: "The end date must not be less than the start date."}})
	case errors.Is(err, entity.ErrLeadConverted):
		return &DomainError{
			Code:    CodeConflict,
			Message: "lead already converted",
			Errors:  ValidationErrors{{Field: "lead", Message: err.Error()}},
		}
	}
	return &TechnicalError{Code: CodeInternal, Message: fmt.Sprintf("failed to %s", op), Err: err}
}
