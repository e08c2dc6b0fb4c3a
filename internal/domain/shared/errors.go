package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...interface{}) *DomainError {
	return &DomainError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Is matches domain errors by code, so a formatted error still matches its
// sentinel under errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Common domain errors
var (
	ErrValidation        = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrConflict          = NewDomainError("CONFLICT", "Resource conflicts with existing state")
	ErrAlreadyExists     = NewDomainError("CONFLICT", "Resource already exists")
	ErrInvalidState      = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrOptimisticLock    = NewDomainError("OPTIMISTIC_LOCK_FAILED", "Resource was modified by another process")
	ErrInternal          = NewDomainError("INTERNAL_ERROR", "Internal error")
)
