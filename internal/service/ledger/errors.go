package ledger

import (
	"errors"
	"fmt"

	"budgetledger/internal/repository"
)

// Error kinds surfaced to callers. Every error returned by the Ledger that is
// not an infrastructure failure matches exactly one of these with errors.Is.
var (
	ErrValidation            = errors.New("validation error")
	ErrNotFound              = errors.New("not found")
	ErrInconsistentReference = errors.New("inconsistent reference")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrReferenced            = errors.New("referenced by dependent records")
	ErrConflict              = errors.New("concurrent modification")
)

// ErrInvalidAmount is the validation error for negative or out-of-range
// amounts.
var ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)

// FieldError reports a single invalid input field.
type FieldError struct {
	Field   string
	Message string
	kind    error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }
func (e *FieldError) Unwrap() error { return e.kind }

func invalid(field, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg, kind: ErrValidation}
}

// InvalidField builds a validation error for callers outside the ledger,
// e.g. a malformed query parameter.
func InvalidField(field, msg string) error { return invalid(field, msg) }

func invalidAmount(field, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg, kind: ErrInvalidAmount}
}

// NotFoundError names the entity that could not be resolved.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity, id string) error { return &NotFoundError{Entity: entity, ID: id} }

// storeErr translates repository errors for entity/id.
func storeErr(entity, id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(entity, id)
	case errors.Is(err, repository.ErrStale):
		return fmt.Errorf("%w: %s %s was changed by another writer", ErrConflict, entity, id)
	default:
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}
}

// Code returns the stable machine-readable name of err's kind, or "internal".
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInconsistentReference):
		return "inconsistent_reference"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrReferenced):
		return "referenced"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

func isMissing(err error) bool { return errors.Is(err, repository.ErrNotFound) }
