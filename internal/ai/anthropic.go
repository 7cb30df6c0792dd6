package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

// AnthropicClient generates newsletter content with Claude and the hosted
// web search tool.
type AnthropicClient struct {
	client         *anthropic.Client
	model          string
	maxTokens      int
	maxWebSearches int
	allowedDomains []string
	cfg            *config.Config
	logger         *logger.Logger
}

func NewAnthropicClient(cfg *config.Config, log *logger.Logger) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.Generator.APIKey)}
	if cfg.Generator.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.Generator.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicClient{
		client:         &client,
		model:          cfg.Generator.Model,
		maxTokens:      cfg.Generator.MaxTokens,
		maxWebSearches: cfg.WebSearchLimit(),
		allowedDomains: cfg.Generator.AllowedDomains,
		cfg:            cfg,
		logger:         log,
	}
}

func (a *AnthropicClient) Name() string {
	return "anthropic"
}

func (a *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.GeneratorTimeout())
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.maxWebSearches > 0 {
		params.Tools = []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{
				MaxUses:        anthropic.Int(int64(a.maxWebSearches)),
				AllowedDomains: a.allowedDomains,
			},
		}}
	}

	a.logger.Info("sending generation request", "provider", a.Name(), "model", a.model, "prompt_length", len(prompt))

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	// Text is split across blocks around tool calls and citations; each
	// block ends its own line.
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
			sb.WriteString("\n")
		}
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}

	a.logger.Info("received generated content", "provider", a.Name(), "length", len(content))
	return content, nil
}
