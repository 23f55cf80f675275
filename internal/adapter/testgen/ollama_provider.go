package testgen

import (
	"context"
	"fmt"

	"ielts-prep/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaGenerator implements domain.TestGenerator against a local Ollama
// server through langchaingo. Local models have no quota, so every failure
// is a plain provider error.
type OllamaGenerator struct {
	llm   llms.Model
	model string
}

func NewOllamaGenerator(serverURL, model string) (*OllamaGenerator, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(serverURL),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama client: %w", err)
	}
	return &OllamaGenerator{llm: llm, model: model}, nil
}

func (o *OllamaGenerator) GenerateTest(ctx context.Context, opts domain.GenerationOptions) (*domain.GeneratedTest, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, BuildPrompt(opts)),
	}

	resp, err := o.llm.GenerateContent(ctx, messages, llms.WithTemperature(0.7))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ollama call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("ollama returned no choices")
	}

	choice := resp.Choices[0]
	payload, err := ExtractJSON(choice.Content)
	if err != nil {
		return nil, err
	}

	generated := &domain.GeneratedTest{Payload: payload, Model: o.model}
	if total, ok := choice.GenerationInfo["TotalTokens"].(int); ok {
		generated.TotalTokens = total
	}
	return generated, nil
}

func (o *OllamaGenerator) ModelID() string {
	return o.model
}
