package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeOutOfStock          = "OUT_OF_STOCK"
	ErrCodeUnavailable         = "UNAVAILABLE"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeTooLateToCancel     = "TOO_LATE_TO_CANCEL"
	ErrCodeInvalidOrExpiredOTP = "INVALID_OR_EXPIRED_OTP"
	ErrCodeDependency          = "DEPENDENCY_ERROR"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business rule violation surfaced to the client.
// Two domain errors match under errors.Is when their codes are equal.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrProductNotFound     = NewDomainError(ErrCodeNotFound, "Product not found")
	ErrCartNotFound        = NewDomainError(ErrCodeNotFound, "Cart not found")
	ErrCartItemNotFound    = NewDomainError(ErrCodeNotFound, "Item not found in cart")
	ErrOrderNotFound       = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrVendorNotFound      = NewDomainError(ErrCodeNotFound, "Vendor not found")
	ErrUnauthorised        = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrForbidden           = NewDomainError(ErrCodeForbidden, "Access denied")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrOutOfStock          = NewDomainError(ErrCodeOutOfStock, "Insufficient stock")
	ErrUnavailable         = NewDomainError(ErrCodeUnavailable, "Product is unavailable")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Invalid order status transition")
	ErrTooLateToCancel     = NewDomainError(ErrCodeTooLateToCancel, "Order can no longer be cancelled")
	ErrInvalidOrExpiredOTP = NewDomainError(ErrCodeInvalidOrExpiredOTP, "Invalid or expired OTP")
	ErrInvalidQuantity     = NewDomainError(ErrCodeValidation, "Quantity must be between 1 and 2147483647")
	ErrInvalidStatus       = NewDomainError(ErrCodeValidation, "Unknown order status")
	ErrValidation          = NewDomainError(ErrCodeValidation, "Invalid request")
	ErrDependency          = NewDomainError(ErrCodeDependency, "A backing service is unavailable, please retry")
)

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// DependencyError wraps a storage or transport failure.
// It matches ErrDependency under errors.Is and unwraps to the cause.
type DependencyError struct {
	Op  string
	Err error
}

// NewDependencyError wraps err as a dependency failure of op.
func NewDependencyError(op string, err error) *DependencyError {
	return &DependencyError{Op: op, Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrDependency.
func (e *DependencyError) Is(target error) bool {
	return target == ErrDependency
}

// AsDomainError extracts the domain error carried by err, if any.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
