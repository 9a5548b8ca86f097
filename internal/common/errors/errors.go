// internal/common/errors/errors.go

// Package errors provides the standardized error taxonomy of the
// notification dispatch core.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidCategory   ErrorCode = "INVALID_CATEGORY"
	ErrCodeMissingField      ErrorCode = "MISSING_FIELD"
	ErrCodeUnknownRecipient  ErrorCode = "UNKNOWN_RECIPIENT"
	ErrCodeStoreUnavailable  ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewInvalidCategoryError creates a non-retryable builder validation error.
func NewInvalidCategoryError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCategory,
		Message:   "Unknown notification category",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingFieldError creates a non-retryable payload validation error
// naming the missing field.
func NewMissingFieldError(category, field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingField,
		Message:   "Required payload field missing",
		Details:   fmt.Sprintf("category: %s, field: %s", category, field),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownRecipientError creates a non-retryable directory resolution error.
func NewUnknownRecipientError(orderID, role string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownRecipient,
		Message:   "No recipient mapped for order and role",
		Details:   fmt.Sprintf("orderId: %s, role: %s", orderID, role),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable record store error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Notification record store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable missing record error.
func NewNotFoundError(recordID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Notification record not found",
		Details:   fmt.Sprintf("recordId: %s", recordID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTransitionError creates a non-retryable state machine error.
func NewInvalidTransitionError(orderID, from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Order state transition not permitted",
		Details:   fmt.Sprintf("orderId: %s, from: %s, to: %s", orderID, from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed. Returns an
// empty code for non-standard errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func IsInvalidCategory(err error) bool  { return HasCode(err, ErrCodeInvalidCategory) }
func IsMissingField(err error) bool     { return HasCode(err, ErrCodeMissingField) }
func IsUnknownRecipient(err error) bool { return HasCode(err, ErrCodeUnknownRecipient) }
func IsStoreUnavailable(err error) bool { return HasCode(err, ErrCodeStoreUnavailable) }
func IsNotFound(err error) bool         { return HasCode(err, ErrCodeNotFound) }

// IsRetryable reports whether err is worth retrying at a higher layer. The
// dispatch core itself never retries; retry policy belongs to the transport.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// MissingFieldName returns the field named by a MISSING_FIELD error, or "".
func MissingFieldName(err error) string {
	var stdErr *StandardError
	if !stderrors.As(err, &stdErr) || stdErr.Code != ErrCodeMissingField {
		return ""
	}
	if f, ok := stdErr.Metadata["field"].(string); ok {
		return f
	}
	return ""
}
