// Package domain defines core types, interfaces, and errors for the racing API.
package domain

import "fmt"

// NotFoundError indicates a row was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// SchemaNotFoundError indicates that a requested table does not exist in the store.
type SchemaNotFoundError struct {
	Table string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("table %q not found", e.Table)
}

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., a unique constraint on a non-identity column).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// StoreUnavailableError indicates the store could not be reached in time.
// Cause is the underlying driver or context error.
type StoreUnavailableError struct {
	Op    string
	Cause error
}

func (e *StoreUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("store unavailable: %s", e.Op)
	}
	return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Cause)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Cause }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrSchemaNotFound creates a SchemaNotFoundError for the given table.
func ErrSchemaNotFound(table string) *SchemaNotFoundError {
	return &SchemaNotFoundError{Table: table}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrStoreUnavailable wraps cause as a StoreUnavailableError for operation op.
func ErrStoreUnavailable(op string, cause error) *StoreUnavailableError {
	return &StoreUnavailableError{Op: op, Cause: cause}
}
