package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

// GeminiClient generates content with Gemini grounded on Google Search.
type GeminiClient struct {
	client *genai.Client
	model  string
	cfg    *config.Config
	logger *logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, log *logger.Logger) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.Generator.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Generator.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Generator.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Generator.Model,
		cfg:    cfg,
		logger: log,
	}, nil
}

func (g *GeminiClient) Name() string {
	return "gemini"
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.GeneratorTimeout())
	defer cancel()

	g.logger.Info("sending generation request", "provider", g.Name(), "model", g.model, "prompt_length", len(prompt))

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		g.contentConfig(),
	)
	if err != nil {
		return "", fmt.Errorf("gemini API call: %w", err)
	}

	content := geminiText(resp)
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyResponse
	}

	g.logger.Info("received generated content", "provider", g.Name(), "length", len(content))
	return content, nil
}

func (g *GeminiClient) contentConfig() *genai.GenerateContentConfig {
	gcfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.cfg.Generator.MaxTokens),
	}
	if g.cfg.WebSearchLimit() > 0 {
		gcfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return gcfg
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
