package validation

import (
	"regexp"
	"strings"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/dto"
)

const (
	MaxQuestionCount = 40
	MaxTimeMinutes   = 120
	MaxExcludeIDs    = 100
	MaxTokensPerCall = 2_000_000
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	topicPattern      = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateModule checks a module name from a path or body.
func (v *Validator) ValidateModule(field, raw string) (domain.Module, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return "", domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	module, ok := domain.ParseModule(raw)
	if !ok {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	return module, nil
}

// ValidateDifficulty accepts an empty value as medium.
func (v *Validator) ValidateDifficulty(field, raw string) (domain.Difficulty, domain.ValidationErrors) {
	d, ok := domain.ParseDifficulty(raw)
	if !ok {
		return "", domain.ValidationErrors{domain.NewInvalidFormatError(field, raw)}
	}
	return d, nil
}

func (v *Validator) ValidateCompletionRequest(req *dto.RecordCompletionRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(req.Topic) == "" {
		errors = append(errors, domain.NewMissingFieldError("topic"))
	} else if !topicPattern.MatchString(req.Topic) {
		errors = append(errors, domain.NewInvalidFormatError("topic", req.Topic))
	}
	return errors
}

func (v *Validator) ValidateSmartTestRequest(req *dto.SmartTestRequest) (domain.Module, domain.ValidationErrors) {
	module, errors := v.ValidateModule("module", req.Module)

	if req.Topic != "" && !topicPattern.MatchString(req.Topic) {
		errors = append(errors, domain.NewInvalidFormatError("topic", req.Topic))
	}
	if len(req.ExcludeIDs) > MaxExcludeIDs {
		errors = append(errors, domain.NewOutOfRangeError("exclude_ids", len(req.ExcludeIDs), 0, MaxExcludeIDs))
	}
	for _, id := range req.ExcludeIDs {
		if !identifierPattern.MatchString(id) {
			errors = append(errors, domain.NewInvalidFormatError("exclude_ids", id))
			break
		}
	}
	return module, errors
}

// ValidateGenerateRequest returns the options to generate with, or the
// field errors.
func (v *Validator) ValidateGenerateRequest(req *dto.GenerateTestRequest) (domain.GenerationOptions, domain.ValidationErrors) {
	module, errors := v.ValidateModule("module", req.Module)
	difficulty, diffErrs := v.ValidateDifficulty("difficulty", req.Difficulty)
	errors = append(errors, diffErrs...)

	if req.RequestID != "" && !identifierPattern.MatchString(req.RequestID) {
		errors = append(errors, domain.NewInvalidFormatError("request_id", req.RequestID))
	}
	if strings.TrimSpace(req.QuestionType) == "" {
		errors = append(errors, domain.NewMissingFieldError("question_type"))
	}
	if req.QuestionCount < 1 || req.QuestionCount > MaxQuestionCount {
		errors = append(errors, domain.NewOutOfRangeError("question_count", req.QuestionCount, 1, MaxQuestionCount))
	}
	if req.TimeMinutes < 1 || req.TimeMinutes > MaxTimeMinutes {
		errors = append(errors, domain.NewOutOfRangeError("time_minutes", req.TimeMinutes, 1, MaxTimeMinutes))
	}
	if len(req.TopicPreference) > 200 {
		errors = append(errors, domain.NewOutOfRangeError("topic_preference", len(req.TopicPreference), 0, 200))
	}
	if len(errors) > 0 {
		return domain.GenerationOptions{}, errors
	}

	return domain.GenerationOptions{
		Module:          module,
		QuestionType:    strings.TrimSpace(req.QuestionType),
		Difficulty:      difficulty,
		TopicPreference: strings.TrimSpace(req.TopicPreference),
		QuestionCount:   req.QuestionCount,
		TimeMinutes:     req.TimeMinutes,
		ModuleConfig:    req.Config,
	}, nil
}

func (v *Validator) ValidateRequestID(requestID string) domain.ValidationErrors {
	if !identifierPattern.MatchString(requestID) {
		return domain.ValidationErrors{domain.NewInvalidFormatError("request_id", requestID)}
	}
	return nil
}

func (v *Validator) ValidateUsageRequest(req *dto.RecordUsageRequest) domain.ValidationErrors {
	if req.TokensUsed < 0 || req.TokensUsed > MaxTokensPerCall {
		return domain.ValidationErrors{domain.NewOutOfRangeError("tokens_used", req.TokensUsed, 0, MaxTokensPerCall)}
	}
	return nil
}
