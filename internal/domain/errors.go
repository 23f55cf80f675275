package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrValidation   ErrorCode = "VALIDATION_ERROR"

	// Selection and generation errors
	ErrUnauthenticated       ErrorCode = "UNAUTHENTICATED"
	ErrProviderQuotaExceeded ErrorCode = "PROVIDER_QUOTA_EXCEEDED"
	ErrProviderError         ErrorCode = "PROVIDER_ERROR"
	ErrProviderCredentials   ErrorCode = "PROVIDER_CREDENTIALS"
	ErrInvalidPayload        ErrorCode = "INVALID_PAYLOAD"
	ErrNoFallbackAvailable   ErrorCode = "NO_FALLBACK_AVAILABLE"
	ErrNoTestsAvailable      ErrorCode = "NO_TESTS_AVAILABLE"
	ErrCancelled             ErrorCode = "CANCELLED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first DomainError in err's chain, or
// ErrInternal when there is none.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrInternal
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewUnauthenticatedError() *DomainError {
	return NewError(ErrUnauthenticated, "authentication required", nil)
}

func NewNoTestsAvailableError(module Module, topic string) *DomainError {
	if topic == "" {
		return NewError(ErrNoTestsAvailable, fmt.Sprintf("no %s tests are available yet", module), nil)
	}
	return NewError(ErrNoTestsAvailable, fmt.Sprintf("no %s tests are available yet for topic %q", module, topic), nil)
}

func NewNoFallbackAvailableError(module Module) *DomainError {
	return NewError(ErrNoFallbackAvailable, fmt.Sprintf("no valid %s preset is available", module), nil)
}

func NewCancelledError(err error) *DomainError {
	return NewError(ErrCancelled, "request was cancelled", err)
}

// UserMessage returns the text shown to a learner when an operation ends
// with the given code.
func UserMessage(code ErrorCode) string {
	switch code {
	case ErrNoTestsAvailable:
		return "No practice content exists for this selection yet. Please choose another topic or check back later."
	case ErrProviderCredentials:
		return "The AI provider rejected the configured credentials. Please add your own API key in settings."
	case ErrProviderQuotaExceeded, ErrProviderError, ErrInvalidPayload, ErrNoFallbackAvailable:
		return "We could not generate a test right now. Please try again later."
	case ErrUnauthenticated:
		return "Please sign in to continue."
	case ErrCancelled:
		return "The request was cancelled."
	default:
		return "Something went wrong. Please try again later."
	}
}
