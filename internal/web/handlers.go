package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/camuig/alphaminr/internal/pipeline"
	"github.com/camuig/alphaminr/internal/render"
	"github.com/camuig/alphaminr/internal/search"
	"github.com/camuig/alphaminr/internal/storage"
)

const (
	cronSecretHeader  = "X-Cron-Secret"
	sampleResultCount = 3
	displayDateLayout = "2006-01-02"
)

type GenerateResponse struct {
	Success               bool    `json:"success"`
	HTML                  string  `json:"html,omitempty"`
	NewsletterID          string  `json:"newsletter_id,omitempty"`
	GenerationTimeSeconds float64 `json:"generation_time_seconds"`
	TotalTimeSeconds      float64 `json:"total_time_seconds"`
	Message               string  `json:"message,omitempty"`
	Error                 string  `json:"error,omitempty"`
}

type NewsletterItem struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	DisplayDate string `json:"display_date"`
}

type ListResponse struct {
	Success     bool             `json:"success"`
	Newsletters []NewsletterItem `json:"newsletters"`
	Count       int              `json:"count"`
}

type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Environment HealthEnvironment `json:"environment"`
}

type HealthEnvironment struct {
	SearchAPIKeySet    bool `json:"search_api_key_set"`
	GeneratorAPIKeySet bool `json:"generator_api_key_set"`
}

type TestSearchRequest struct {
	SearchType string `json:"search_type"`
}

type TestSearchResponse struct {
	Success       bool            `json:"success"`
	SearchType    string          `json:"search_type"`
	ResultsCount  int             `json:"results_count"`
	SampleResults []search.Result `json:"sample_results"`
	Degraded      bool            `json:"degraded"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type IndexData struct {
	Newsletters []NewsletterItem
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexData{}
	if items, err := s.listItems(r.Context(), 20); err == nil {
		data.Newsletters = items
	} else {
		s.logger.Error("list newsletters for index", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("execute template", "error", err)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.generate(w, r, pipeline.TriggerManual, true)
}

// handleCronGenerate is the external scheduler entry point. With no secret
// configured every request is allowed.
func (s *Server) handleCronGenerate(w http.ResponseWriter, r *http.Request) {
	secret := s.config.Web.CronSecret
	if secret == "" {
		s.logger.Warn("cron secret not set, allowing request")
	} else if r.Header.Get(cronSecretHeader) != secret {
		s.logger.Error("invalid cron secret", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
		return
	}

	s.logger.Info("cron request triggered newsletter generation")
	s.generate(w, r, pipeline.TriggerCron, false)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, trigger string, includeHTML bool) {
	if !s.config.SearchConfigured() || !s.config.GeneratorConfigured() {
		writeJSON(w, http.StatusInternalServerError, GenerateResponse{
			Error:   "Missing required API keys",
			Message: "Missing required API keys",
		})
		return
	}

	start := s.now()
	// Generation outlives a dropped client connection.
	ctx := context.WithoutCancel(r.Context())

	res, err := s.generator.Run(ctx, trigger)
	if err != nil {
		msg := "Failed to generate newsletter"
		if errors.Is(err, pipeline.ErrGeneration) {
			msg = "Failed to generate content"
		}
		writeJSON(w, http.StatusInternalServerError, GenerateResponse{
			Error:            err.Error(),
			Message:          msg,
			TotalTimeSeconds: s.now().Sub(start).Seconds(),
		})
		return
	}

	resp := GenerateResponse{
		Success:               true,
		NewsletterID:          res.NewsletterID,
		GenerationTimeSeconds: res.GenerationTime.Seconds(),
		TotalTimeSeconds:      res.TotalTime.Seconds(),
		Message:               "Newsletter generated successfully",
	}
	if includeHTML {
		resp.HTML = res.HTML
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListNewsletters(w http.ResponseWriter, r *http.Request) {
	items, err := s.listItems(r.Context(), 0)
	if err != nil {
		s.logger.Error("list newsletters", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Success: true, Newsletters: items, Count: len(items)})
}

func (s *Server) listItems(ctx context.Context, limit int) ([]NewsletterItem, error) {
	list, err := s.repo.ListNewsletters(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]NewsletterItem, 0, len(list))
	for _, n := range list {
		items = append(items, NewsletterItem{
			ID:          n.ID,
			CreatedAt:   n.CreatedAt.Format(time.RFC3339),
			DisplayDate: n.CreatedAt.Format(displayDateLayout),
		})
	}
	return items, nil
}

func (s *Server) handleViewNewsletter(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, n.HTMLContent)
}

func (s *Server) handleNewsletterMarkdown(w http.ResponseWriter, r *http.Request) {
	n, ok := s.lookup(w, r)
	if !ok {
		return
	}

	out, err := render.Markdown(n.HTMLContent)
	if err != nil {
		s.logger.Error("convert newsletter to markdown", "id", n.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, out)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*storage.Newsletter, bool) {
	id := r.PathValue("id")
	n, err := s.repo.GetNewsletter(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Newsletter not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.logger.Error("get newsletter", "id", id, "error", err)
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return n, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339),
		Environment: HealthEnvironment{
			SearchAPIKeySet:    s.config.SearchConfigured(),
			GeneratorAPIKeySet: s.config.GeneratorConfigured(),
		},
	})
}

func (s *Server) handleTestSearch(w http.ResponseWriter, r *http.Request) {
	var req TestSearchRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
	}
	if req.SearchType == "" {
		req.SearchType = search.GovernmentPolicies.Key
	}

	category, ok := search.CategoryByKey(req.SearchType)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid search type"})
		return
	}

	resp := category.Collect(r.Context(), s.searcher, s.logger)
	sample := resp.Results
	if len(sample) > sampleResultCount {
		sample = sample[:sampleResultCount]
	}
	if sample == nil {
		sample = []search.Result{}
	}

	writeJSON(w, http.StatusOK, TestSearchResponse{
		Success:       true,
		SearchType:    category.Key,
		ResultsCount:  len(resp.Results),
		SampleResults: sample,
		Degraded:      resp.Degraded(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
