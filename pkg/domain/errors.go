package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the record store and the application services.
var (
	// ErrNotFound indicates a referenced project, task, employee or log does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a natural key is already taken.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates the input was rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotSynced indicates the task has no remote issue key yet.
	ErrNotSynced = errors.New("task not synced with tracker")
)

// NotFoundError names the missing entity and the key it was looked up by.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// Is allows errors.Is to match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError for the given entity and key.
func NotFound(entity string, key any) error {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// ConflictError names the natural key that already exists.
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with ID %s already exists", e.Entity, e.Key)
}

// Is allows errors.Is to match ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Conflict builds a ConflictError for the given entity and key.
func Conflict(entity string, key any) error {
	return &ConflictError{Entity: entity, Key: fmt.Sprint(key)}
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is allows errors.Is to match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// MissingField builds a ValidationError for an absent required field.
func MissingField(field string) error {
	return &ValidationError{Field: field, Reason: "missing required field"}
}
