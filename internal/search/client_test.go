package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Search: config.SearchConfig{
		APIKey:            "test-key",
		BaseURL:           srv.URL,
		TimeoutSeconds:    5,
		RequestsPerSecond: 1000,
		ResultCount:       10,
	}}
	return NewClient(cfg, logger.Discard())
}

func TestWebSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/web/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "S&P 500 today", r.URL.Query().Get("q"))
		assert.Equal(t, "pd", r.URL.Query().Get("freshness"))
		assert.Equal(t, "US", r.URL.Query().Get("country"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"web": map[string]any{
				"results": []map[string]any{
					{"title": "S&P 500 hits record", "description": "Stocks rally", "url": "https://example.com/spx"},
				},
			},
		})
	})

	results, err := client.WebSearch(context.Background(), "S&P 500 today")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "S&P 500 hits record", results[0].Title)
	assert.Equal(t, "Stocks rally", results[0].Description)
	assert.Equal(t, "https://example.com/spx", results[0].URL)
}

func TestNewsSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news/search", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Fed holds rates", "description": "Powell speaks", "url": "https://example.com/fed"},
				{"title": "CPI cools", "description": "Inflation eases", "url": "https://example.com/cpi"},
			},
		})
	})

	results, err := client.NewsSearch(context.Background(), "fed")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "CPI cools", results[1].Title)
}

func TestSearch_Non200(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.NewsSearch(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSearch_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.WebSearch(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

type fakeSearcher struct {
	news    map[string][]Result
	web     map[string][]Result
	failing map[string]bool
	calls   []string
}

func (f *fakeSearcher) WebSearch(_ context.Context, q string) ([]Result, error) {
	f.calls = append(f.calls, "web:"+q)
	if f.failing[q] {
		return nil, errors.New("boom")
	}
	return f.web[q], nil
}

func (f *fakeSearcher) NewsSearch(_ context.Context, q string) ([]Result, error) {
	f.calls = append(f.calls, "news:"+q)
	if f.failing[q] {
		return nil, errors.New("boom")
	}
	return f.news[q], nil
}

func TestCategoryCollect_DegradesOnFailure(t *testing.T) {
	s := &fakeSearcher{
		news: map[string][]Result{
			"regulatory changes today": {{Title: "SEC rule"}},
			"executive order today":    {{Title: "EO signed"}, {Title: "EO reaction"}},
		},
		failing: map[string]bool{"government policy announcement today": true},
	}

	resp := GovernmentPolicies.Collect(context.Background(), s, logger.Discard())

	assert.True(t, resp.Degraded())
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, "SEC rule", resp.Results[0].Title)
	assert.Len(t, s.calls, len(GovernmentPolicies.Queries))
}

func TestCollectAll_PromptOrder(t *testing.T) {
	s := &fakeSearcher{}
	out := CollectAll(context.Background(), s, logger.Discard())

	require.Len(t, out, 4)
	assert.Equal(t, "government_policies", out[0].Category.Key)
	assert.Equal(t, "economic_data", out[1].Category.Key)
	assert.Equal(t, "central_bank_statements", out[2].Category.Key)
	assert.Equal(t, "geopolitical_developments", out[3].Category.Key)
	assert.Len(t, s.calls, 20)
}

func TestCategoryByKey(t *testing.T) {
	c, ok := CategoryByKey("economic_data")
	assert.True(t, ok)
	assert.Equal(t, "ECONOMIC DATA RELEASES", c.Heading)

	_, ok = CategoryByKey("sports")
	assert.False(t, ok)
}
