package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
	"github.com/camuig/alphaminr/internal/market"
	"github.com/camuig/alphaminr/internal/pipeline"
	"github.com/camuig/alphaminr/internal/search"
	"github.com/camuig/alphaminr/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Generator runs one newsletter generation.
type Generator interface {
	Run(ctx context.Context, trigger string) (*pipeline.Result, error)
}

// Store is the read side of the newsletter repository.
type Store interface {
	GetNewsletter(ctx context.Context, id string) (*storage.Newsletter, error)
	ListNewsletters(ctx context.Context, limit int) ([]storage.NewsletterSummary, error)
}

type Server struct {
	httpServer *http.Server
	generator  Generator
	repo       Store
	searcher   search.Searcher
	config     *config.Config
	logger     *logger.Logger
	now        func() time.Time
}

func NewServer(gen Generator, repo Store, searcher search.Searcher, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		generator: gen,
		repo:      repo,
		searcher:  searcher,
		config:    cfg,
		logger:    log,
		now:       time.Now,
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:     s.routes(),
		ReadTimeout: 10 * time.Second,
		// Generation requests hold the connection for the whole run.
		WriteTimeout: runBudget(cfg) + 2*time.Minute,
	}

	return s
}

// runBudget is the longest a generation run can take when every search
// query and the generator call run to their timeouts.
func runBudget(cfg *config.Config) time.Duration {
	queries := market.QueryCount() + search.QueryCount()
	return time.Duration(queries)*cfg.SearchTimeout() + cfg.GeneratorTimeout()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/cron/generate", s.handleCronGenerate)
	mux.HandleFunc("GET /api/newsletters", s.handleListNewsletters)
	mux.HandleFunc("GET /api/newsletters/{id}/markdown", s.handleNewsletterMarkdown)
	mux.HandleFunc("GET /newsletter/{id}", s.handleViewNewsletter)
	mux.HandleFunc("POST /api/test-search", s.handleTestSearch)
	return s.logRequests(mux)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
