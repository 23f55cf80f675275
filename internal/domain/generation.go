package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxGenerationAttempts bounds provider calls per Generate request.
const MaxGenerationAttempts = 2

// GenerationOptions describes one test to generate.
type GenerationOptions struct {
	Module          Module
	QuestionType    string
	Difficulty      Difficulty
	TopicPreference string
	QuestionCount   int
	TimeMinutes     int
	// ModuleConfig carries module-specific settings such as the listening
	// accent or the writing task number.
	ModuleConfig map[string]any
}

// GenerationStatus is the terminal state of a generation request.
type GenerationStatus string

const (
	GenerationSucceeded         GenerationStatus = "succeeded"
	GenerationFallbackSucceeded GenerationStatus = "fallback_succeeded"
	GenerationFailed            GenerationStatus = "failed"
	GenerationCancelled         GenerationStatus = "cancelled"
)

// GenerationResult is returned for every Generate call; failures are
// reported in it rather than as a Go error.
type GenerationResult struct {
	RequestID    string
	Success      bool
	Status       GenerationStatus
	TestID       string
	Data         json.RawMessage
	UsedFallback bool
	// ErrorCode is set on failure, and on fallback success to say why the
	// live attempts were abandoned.
	ErrorCode    ErrorCode
	Error        string
	Attempts     int
	TokensUsed   int
	QuotaWarning bool
}

// GeneratedTest is a provider response before validation.
type GeneratedTest struct {
	Payload json.RawMessage
	// TotalTokens is the provider-reported usage; 0 when not reported.
	TotalTokens int
	Model       string
}

// TestGenerator is the external generation provider.
type TestGenerator interface {
	GenerateTest(ctx context.Context, opts GenerationOptions) (*GeneratedTest, error)
	ModelID() string
}

// ProviderQuotaError means the provider refused the call because a usage
// quota is exhausted. It is never retried.
type ProviderQuotaError struct {
	Err error
}

func (e *ProviderQuotaError) Error() string {
	return fmt.Sprintf("provider quota exceeded: %v", e.Err)
}

func (e *ProviderQuotaError) Unwrap() error { return e.Err }

// ProviderAuthError means the provider rejected the configured credentials.
type ProviderAuthError struct {
	Err error
}

func (e *ProviderAuthError) Error() string {
	return fmt.Sprintf("provider rejected credentials: %v", e.Err)
}

func (e *ProviderAuthError) Unwrap() error { return e.Err }

// IsProviderQuotaError reports whether err is a provider quota refusal.
func IsProviderQuotaError(err error) bool {
	var qe *ProviderQuotaError
	return errors.As(err, &qe)
}

// IsProviderAuthError reports whether err is a provider credentials refusal.
func IsProviderAuthError(err error) bool {
	var ae *ProviderAuthError
	return errors.As(err, &ae)
}
