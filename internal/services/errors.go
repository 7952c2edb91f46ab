package services

import (
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/authz"
	"gorm.io/gorm"
)

// Sentinel errors returned by every service. Controllers map them to HTTP statuses.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = authz.ErrForbidden
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

// ValidationError describes why a single field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// notFound translates gorm's missing-row error into ErrNotFound and wraps
// everything else with what.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("loading %s: %w", what, err)
}
