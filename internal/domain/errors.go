package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyQuery         = NewDomainError(ErrCodeValidation, "query is required")
	ErrInvalidShopStatus  = NewDomainError(ErrCodeValidation, "invalid shop status")
	ErrInvalidCoordinates = NewDomainError(ErrCodeValidation, "invalid coordinates")
)

// Not found errors
var (
	ErrShopNotFound        = NewDomainError(ErrCodeNotFound, "shop not found")
	ErrPlanNotFound        = NewDomainError(ErrCodeNotFound, "plan not found")
	ErrInteractionNotFound = NewDomainError(ErrCodeNotFound, "interaction not found")
)

// Service errors
var (
	ErrRegistryUnavailable = NewDomainError(ErrCodeUnavailable, "business registry unavailable")
)
