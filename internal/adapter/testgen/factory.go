package testgen

import (
	"context"
	"fmt"

	"ielts-prep/internal/config"
	"ielts-prep/internal/domain"
)

// NewGenerator builds the generator selected by generation.provider.
func NewGenerator(ctx context.Context, cfg *config.Config) (domain.TestGenerator, error) {
	switch cfg.Generation.Provider {
	case "gemini":
		return NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "ollama":
		return NewOllamaGenerator(cfg.Ollama.ServerURL, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Generation.Provider)
	}
}
