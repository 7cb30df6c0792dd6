package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camuig/alphaminr/internal/ai"
	"github.com/camuig/alphaminr/internal/logger"
	"github.com/camuig/alphaminr/internal/market"
	"github.com/camuig/alphaminr/internal/render"
	"github.com/camuig/alphaminr/internal/search"
	"github.com/camuig/alphaminr/internal/storage"
)

// ErrGeneration is returned when the generator produced nothing usable.
var ErrGeneration = errors.New("failed to generate newsletter content")

const excerptRunes = 600

// Triggers recorded with each run.
const (
	TriggerManual = "manual"
	TriggerCron   = "cron"
	TriggerCLI    = "cli"
)

type MarketCollector interface {
	Collect(ctx context.Context) market.Snapshot
}

type Store interface {
	SaveNewsletter(ctx context.Context, html string, createdAt time.Time) (*storage.Newsletter, error)
	SaveGenerationRun(ctx context.Context, run *storage.GenerationRun) error
}

type Notifier interface {
	NotifyGenerated(id, excerpt string)
	NotifyError(context string, err error)
}

// Result describes one successfully stored newsletter.
type Result struct {
	NewsletterID   string
	HTML           string
	GenerationTime time.Duration
	TotalTime      time.Duration
}

type Pipeline struct {
	market    MarketCollector
	searcher  search.Searcher
	generator ai.Generator
	store     Store
	notifier  Notifier
	loc       *time.Location
	logger    *logger.Logger

	now func() time.Time
}

func New(
	mc MarketCollector,
	searcher search.Searcher,
	gen ai.Generator,
	store Store,
	notifier Notifier,
	loc *time.Location,
	log *logger.Logger,
) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		market:    mc,
		searcher:  searcher,
		generator: gen,
		store:     store,
		notifier:  notifier,
		loc:       loc,
		logger:    log,
		now:       time.Now,
	}
}

// Run collects market data and news, generates the newsletter text, renders
// it and stores the result. Search failures degrade the prompt but never
// abort the run.
func (p *Pipeline) Run(ctx context.Context, trigger string) (*Result, error) {
	start := p.now()
	run := &storage.GenerationRun{Trigger: trigger, Provider: p.generator.Name()}
	log := p.logger.With("trigger", trigger)

	log.Info("newsletter generation started", "provider", run.Provider)

	// 1. Market snapshot
	snap := p.market.Collect(ctx)
	run.QuotesFound = snap.SeenCount()
	var searchErrs []string
	if snap.Err != nil {
		searchErrs = append(searchErrs, "market: "+snap.Err.Error())
	}

	// 2. Categorized news
	news := search.CollectAll(ctx, p.searcher, log)
	for _, c := range news {
		run.NewsResults += len(c.Results)
		if c.Err != nil {
			searchErrs = append(searchErrs, c.Category.Key+": "+c.Err.Error())
		}
	}
	run.SearchErrors = strings.Join(searchErrs, "\n")
	if len(searchErrs) > 0 {
		log.Warn("search degraded, continuing", "failures", len(searchErrs))
	}

	// 3. Generate
	date := start.In(p.loc)
	prompt := ai.BuildPrompt(date, snap, news)
	log.Debug("prompt assembled", "chars", len(prompt))

	genStart := p.now()
	content, err := p.generator.Generate(ctx, prompt)
	genTime := p.now().Sub(genStart)
	run.GenerationSeconds = genTime.Seconds()
	run.ContentChars = len(content)
	if err == nil && strings.TrimSpace(content) == "" {
		err = ai.ErrEmptyResponse
	}
	if err != nil {
		return nil, p.fail(ctx, run, start, fmt.Errorf("%w: %w", ErrGeneration, err))
	}
	log.Info("content generated", "chars", len(content), "seconds", genTime.Seconds())

	// 4. Render
	doc, err := render.Parse(content)
	if err != nil {
		return nil, p.fail(ctx, run, start, fmt.Errorf("%w: %w", ErrGeneration, err))
	}
	html := doc.HTML(date)
	run.Mentions = len(doc.Mentions)
	log.Info("newsletter rendered", "core_stories", len(doc.CoreStories),
		"horizon_stories", len(doc.HorizonStories), "grid_cells", len(doc.Grid), "mentions", run.Mentions)

	// 5. Store
	saved, err := p.store.SaveNewsletter(ctx, html, start)
	if err != nil {
		return nil, p.fail(ctx, run, start, fmt.Errorf("save newsletter: %w", err))
	}

	total := p.now().Sub(start)
	run.NewsletterID = saved.ID
	run.TotalSeconds = total.Seconds()
	p.saveRun(ctx, run)

	log.Info("newsletter generated",
		"id", saved.ID, "generation_seconds", genTime.Seconds(), "total_seconds", total.Seconds())
	p.notifier.NotifyGenerated(saved.ID, p.excerpt(html))

	return &Result{
		NewsletterID:   saved.ID,
		HTML:           html,
		GenerationTime: genTime,
		TotalTime:      total,
	}, nil
}

func (p *Pipeline) fail(ctx context.Context, run *storage.GenerationRun, start time.Time, err error) error {
	p.logger.Error("newsletter generation failed", "trigger", run.Trigger, "error", err)
	run.Error = err.Error()
	run.TotalSeconds = p.now().Sub(start).Seconds()
	p.saveRun(ctx, run)
	p.notifier.NotifyError("newsletter generation", err)
	return err
}

func (p *Pipeline) saveRun(ctx context.Context, run *storage.GenerationRun) {
	if err := p.store.SaveGenerationRun(ctx, run); err != nil {
		p.logger.Error("save generation run", "error", err)
	}
}

func (p *Pipeline) excerpt(html string) string {
	text, err := render.Markdown(html)
	if err != nil {
		p.logger.Warn("markdown excerpt", "error", err)
		return ""
	}
	return render.Excerpt(text, excerptRunes)
}
