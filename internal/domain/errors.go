package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrCategoryNotFound = errors.New("category not found")

// ConflictKind names the uniqueness invariant a category would violate.
type ConflictKind int

const (
	NameLevelConflict ConflictKind = iota + 1
	SlugConflict
)

func (k ConflictKind) String() string {
	switch k {
	case NameLevelConflict:
		return "name_level"
	case SlugConflict:
		return "slug"
	default:
		return "unknown"
	}
}

// Message is the client-facing text for the conflict.
func (k ConflictKind) Message() string {
	switch k {
	case NameLevelConflict:
		return "Category name and level exists"
	case SlugConflict:
		return "Category slug exists"
	default:
		return "Category exists"
	}
}

type DuplicateCategoryError struct {
	Reason ConflictKind
}

func (e *DuplicateCategoryError) Error() string {
	return e.Reason.Message()
}

// FieldError describes one malformed or missing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError is a shorthand for a single-field failure.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ConstraintViolationError reports a storage constraint that has no more
// specific domain meaning.
type ConstraintViolationError struct {
	Constraint string
	Err        error
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint %q violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintViolationError) Unwrap() error {
	return e.Err
}
