package testgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// contentGenerator is the slice of *genai.Models the provider uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements domain.TestGenerator using the Gemini API.
type GeminiGenerator struct {
	models contentGenerator
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, domain.NewError(domain.ErrProviderCredentials, "gemini API key is required", nil)
	}
	if model == "" {
		return nil, fmt.Errorf("gemini model name cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	logger.Get().Info("Initialized Gemini test generator", zap.String("model", model))
	return &GeminiGenerator{models: client.Models, model: model}, nil
}

func (g *GeminiGenerator) GenerateTest(ctx context.Context, opts domain.GenerationOptions) (*domain.GeneratedTest, error) {
	temperature := float32(0.7)
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(BuildPrompt(opts), genai.RoleUser)}

	result, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	payload, err := ExtractJSON(result.Text())
	if err != nil {
		return nil, err
	}

	generated := &domain.GeneratedTest{Payload: payload, Model: g.model}
	if result.UsageMetadata != nil {
		generated.TotalTokens = int(result.UsageMetadata.TotalTokenCount)
	}
	return generated, nil
}

func (g *GeminiGenerator) ModelID() string {
	return g.model
}

// mapGeminiError classifies API failures. Quota and credential refusals get
// their own types so the orchestrator can stop retrying.
func mapGeminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var code int
	var status string
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status = apiErr.Code, apiErr.Status
	case errors.As(err, &apiErrPtr):
		code, status = apiErrPtr.Code, apiErrPtr.Status
	default:
		return fmt.Errorf("gemini request failed: %w", err)
	}

	switch {
	case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
		return &domain.ProviderQuotaError{Err: err}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &domain.ProviderAuthError{Err: err}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}
