package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (DeepSeek by default). These providers have no hosted search tool, so the
// model relies on the provided data block alone.
type OpenAIClient struct {
	client *openai.Client
	model  string
	cfg    *config.Config
	logger *logger.Logger
}

func NewOpenAIClient(cfg *config.Config, log *logger.Logger) *OpenAIClient {
	ocfg := openai.DefaultConfig(cfg.Generator.APIKey)
	if cfg.Generator.BaseURL != "" {
		ocfg.BaseURL = cfg.Generator.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(ocfg),
		model:  cfg.Generator.Model,
		cfg:    cfg,
		logger: log,
	}
}

func (o *OpenAIClient) Name() string {
	return "openai"
}

func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.GeneratorTimeout())
	defer cancel()

	o.logger.Info("sending generation request", "provider", o.Name(), "model", o.model, "prompt_length", len(prompt))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.cfg.Generator.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices: %w", ErrEmptyResponse)
	}

	content := StripThinkTags(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}

	o.logger.Info("received generated content", "provider", o.Name(), "length", len(content))
	o.logger.Debug("generated raw content", "content", content)
	return content, nil
}

var thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThinkTags removes reasoning-model think blocks from the response.
func StripThinkTags(text string) string {
	return strings.TrimSpace(thinkTagRegex.ReplaceAllString(text, ""))
}
