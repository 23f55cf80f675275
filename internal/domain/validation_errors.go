package domain

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors collects field errors for a single request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) FieldError {
	return FieldError{Field: field, Code: "MISSING_FIELD", Message: "field is required"}
}

func NewInvalidFormatError(field string, value any) FieldError {
	return FieldError{Field: field, Code: "INVALID_FORMAT", Message: fmt.Sprintf("invalid value %v", value)}
}

func NewOutOfRangeError(field string, value, min, max int) FieldError {
	return FieldError{
		Field:   field,
		Code:    "OUT_OF_RANGE",
		Message: fmt.Sprintf("value %d is outside [%d, %d]", value, min, max),
	}
}
