package dto

import (
	"encoding/json"
	"time"
)

// NextTopicResponse is the smart-cycle answer for one module catalog.
type NextTopicResponse struct {
	Module     string         `json:"module"`
	Subtype    string         `json:"subtype,omitempty"`
	Topic      string         `json:"topic"`
	CycleCount int            `json:"cycle_count"`
	Counts     map[string]int `json:"counts"`
}

// RecordCompletionRequest marks a topic as completed once.
type RecordCompletionRequest struct {
	Topic   string `json:"topic"`
	Subtype string `json:"subtype,omitempty"`
}

type RecordCompletionResponse struct {
	Module          string `json:"module"`
	Topic           string `json:"topic"`
	CompletionCount int    `json:"completion_count"`
}

// SmartTestRequest asks for one stored test.
type SmartTestRequest struct {
	Module          string   `json:"module"`
	Topic           string   `json:"topic,omitempty"`
	Subtype         string   `json:"subtype,omitempty"`
	PreferredAccent string   `json:"preferred_accent,omitempty"`
	ExcludeIDs      []string `json:"exclude_ids,omitempty"`
	UseTopicCycle   bool     `json:"use_topic_cycle,omitempty"`
}

type SmartTestResponse struct {
	TestID          string          `json:"test_id"`
	Module          string          `json:"module"`
	Topic           string          `json:"topic,omitempty"`
	Accent          string          `json:"accent,omitempty"`
	TimesUsed       int             `json:"times_used"`
	LastUsedAt      *time.Time      `json:"last_used_at,omitempty"`
	Payload         json.RawMessage `json:"payload" swaggertype:"object"`
	TopicFromCycle  bool            `json:"topic_from_cycle"`
	WidenedToModule bool            `json:"widened_to_module"`
}

// GenerateTestRequest asks for a freshly generated test.
type GenerateTestRequest struct {
	// RequestID lets the client cancel the generation later. The server
	// assigns one when it is empty.
	RequestID       string         `json:"request_id,omitempty"`
	Module          string         `json:"module"`
	QuestionType    string         `json:"question_type"`
	Difficulty      string         `json:"difficulty"`
	TopicPreference string         `json:"topic_preference,omitempty"`
	QuestionCount   int            `json:"question_count"`
	TimeMinutes     int            `json:"time_minutes"`
	Config          map[string]any `json:"config,omitempty"`
}

type GenerateTestResponse struct {
	RequestID    string          `json:"request_id"`
	Success      bool            `json:"success"`
	Status       string          `json:"status"`
	TestID       string          `json:"test_id,omitempty"`
	Data         json.RawMessage `json:"data,omitempty" swaggertype:"object"`
	UsedFallback bool            `json:"used_fallback"`
	ErrorCode    string          `json:"error_code,omitempty"`
	Error        string          `json:"error,omitempty"`
	Attempts     int             `json:"attempts"`
	TokensUsed   int             `json:"tokens_used,omitempty"`
	QuotaWarning bool            `json:"quota_warning,omitempty"`
}

type CancelGenerationResponse struct {
	RequestID string `json:"request_id"`
	Cancelled bool   `json:"cancelled"`
}

type QuotaStatusResponse struct {
	HasEnough     bool    `json:"has_enough"`
	Remaining     int     `json:"remaining"`
	PercentUsed   float64 `json:"percent_used"`
	TokensUsed    int     `json:"tokens_used"`
	RequestsCount int     `json:"requests_count"`
	Limit         int     `json:"limit"`
	EstimatedCost int     `json:"estimated_cost"`
}

// RecordUsageRequest reports tokens spent by another backend function.
type RecordUsageRequest struct {
	TokensUsed int `json:"tokens_used"`
}

type UsageResponse struct {
	Date          string `json:"date"`
	TokensUsed    int    `json:"tokens_used"`
	RequestsCount int    `json:"requests_count"`
}

type QuotaResetResponse struct {
	DisplayOnly bool   `json:"display_only"`
	Message     string `json:"message"`
	Date        string `json:"date"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
