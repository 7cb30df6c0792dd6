package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("generator returned no text")

// Generator turns an assembled prompt into the section-delimited newsletter text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// NewGenerator builds the client for the configured provider.
func NewGenerator(ctx context.Context, cfg *config.Config, log *logger.Logger) (Generator, error) {
	switch cfg.Generator.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg, log), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, log), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}
