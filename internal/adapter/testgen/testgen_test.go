package testgen

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ielts-prep/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

type fakeGeminiModels struct {
	resp      *genai.GenerateContentResponse
	err       error
	lastModel string
	lastCfg   *genai.GenerateContentConfig
}

func (f *fakeGeminiModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastModel = model
	f.lastCfg = config
	return f.resp, f.err
}

func geminiText(text string, tokens int32) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{TotalTokenCount: tokens},
	}
}

func TestGeminiGenerator_GenerateTest(t *testing.T) {
	fake := &fakeGeminiModels{resp: geminiText("```json\n{\"question_groups\":[]}\n```", 4321)}
	g := &GeminiGenerator{models: fake, model: "gemini-2.0-flash"}

	got, err := g.GenerateTest(context.Background(), domain.GenerationOptions{Module: domain.ModuleWriting})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question_groups":[]}`, string(got.Payload))
	assert.Equal(t, 4321, got.TotalTokens)
	assert.Equal(t, "gemini-2.0-flash", got.Model)
	assert.Equal(t, "gemini-2.0-flash", fake.lastModel)
	assert.Equal(t, "application/json", fake.lastCfg.ResponseMIMEType)
}

func TestGeminiGenerator_EmptyResponse(t *testing.T) {
	g := &GeminiGenerator{models: &fakeGeminiModels{resp: &genai.GenerateContentResponse{}}, model: "m"}
	_, err := g.GenerateTest(context.Background(), domain.GenerationOptions{})
	assert.Error(t, err)
}

func TestMapGeminiError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantQuota bool
		wantAuth  bool
	}{
		{"rate limited", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, true, false},
		{"exhausted status only", fmt.Errorf("wrapped: %w", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}), true, false},
		{"pointer error", &genai.APIError{Code: 429}, true, false},
		{"bad key", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, false, true},
		{"unauthorized", genai.APIError{Code: 401}, false, true},
		{"server error", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, false, false},
		{"network", errors.New("connection refused"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapGeminiError(tt.err)
			require.Error(t, mapped)
			assert.Equal(t, tt.wantQuota, domain.IsProviderQuotaError(mapped))
			assert.Equal(t, tt.wantAuth, domain.IsProviderAuthError(mapped))
		})
	}
}

func TestMapGeminiError_KeepsContextErrors(t *testing.T) {
	assert.ErrorIs(t, mapGeminiError(context.Canceled), context.Canceled)
}

func TestGeminiGenerator_QuotaErrorIsTyped(t *testing.T) {
	g := &GeminiGenerator{models: &fakeGeminiModels{err: genai.APIError{Code: 429}}, model: "m"}
	_, err := g.GenerateTest(context.Background(), domain.GenerationOptions{})
	assert.True(t, domain.IsProviderQuotaError(err))
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", "gemini-2.0-flash")
	require.Error(t, err)
	assert.Equal(t, domain.ErrProviderCredentials, domain.CodeOf(err))
}

type fakeLLM struct {
	resp *llms.ContentResponse
	err  error
}

func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return f.resp, f.err
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("not used")
}

func TestOllamaGenerator_GenerateTest(t *testing.T) {
	o := &OllamaGenerator{
		llm: &fakeLLM{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
			Content:        `<think>plan</think>{"question_groups":[]}`,
			GenerationInfo: map[string]any{"TotalTokens": 980},
		}}}},
		model: "qwen3:8b",
	}

	got, err := o.GenerateTest(context.Background(), domain.GenerationOptions{Module: domain.ModuleSpeaking})
	require.NoError(t, err)
	assert.JSONEq(t, `{"question_groups":[]}`, string(got.Payload))
	assert.Equal(t, 980, got.TotalTokens)
	assert.Equal(t, "qwen3:8b", o.ModelID())
}

func TestOllamaGenerator_Errors(t *testing.T) {
	o := &OllamaGenerator{llm: &fakeLLM{err: errors.New("connection refused")}, model: "m"}
	_, err := o.GenerateTest(context.Background(), domain.GenerationOptions{})
	assert.Error(t, err)
	assert.False(t, domain.IsProviderQuotaError(err))

	o = &OllamaGenerator{llm: &fakeLLM{resp: &llms.ContentResponse{}}, model: "m"}
	_, err = o.GenerateTest(context.Background(), domain.GenerationOptions{})
	assert.Error(t, err)
}
