package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

// Result is one normalized search hit.
type Result struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Searcher is the search-provider collaborator used by the market
// collector and the news categories.
type Searcher interface {
	WebSearch(ctx context.Context, query string) ([]Result, error)
	NewsSearch(ctx context.Context, query string) ([]Result, error)
}

// Client talks to the Brave Search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	count      int
	limiter    *rate.Limiter
	logger     *logger.Logger
}

func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.SearchTimeout()},
		baseURL:    strings.TrimRight(cfg.Search.BaseURL, "/"),
		apiKey:     cfg.Search.APIKey,
		count:      cfg.Search.ResultCount,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Search.RequestsPerSecond), 1),
		logger:     log,
	}
}

type webResponse struct {
	Web struct {
		Results []Result `json:"results"`
	} `json:"web"`
}

type newsResponse struct {
	Results []Result `json:"results"`
}

func (c *Client) WebSearch(ctx context.Context, query string) ([]Result, error) {
	var resp webResponse
	if err := c.get(ctx, "/web/search", query, &resp); err != nil {
		return nil, fmt.Errorf("web search %q: %w", query, err)
	}
	return resp.Web.Results, nil
}

func (c *Client) NewsSearch(ctx context.Context, query string) ([]Result, error) {
	var resp newsResponse
	if err := c.get(ctx, "/news/search", query, &resp); err != nil {
		return nil, fmt.Errorf("news search %q: %w", query, err)
	}
	return resp.Results, nil
}

func (c *Client) get(ctx context.Context, path, query string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(c.count))
	params.Set("freshness", "pd")
	params.Set("country", "US")
	params.Set("search_lang", "en")
	params.Set("safesearch", "moderate")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	c.logger.Debug("search request", "path", path, "query", query)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("search API returned status %d: %.200s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
