package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
	"github.com/camuig/alphaminr/internal/pipeline"
)

// Runner runs one newsletter generation.
type Runner interface {
	Run(ctx context.Context, trigger string) (*pipeline.Result, error)
}

// Scheduler triggers the pipeline on a cron expression. Ticks that fire
// while a run is still in progress are skipped.
type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	runner  Runner
	logger  *logger.Logger
	spec    string
	running atomic.Bool
	baseCtx context.Context
}

func NewScheduler(spec string, loc *time.Location, runner Runner, log *logger.Logger) (*Scheduler, error) {
	sched, err := config.ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		runner:  runner,
		logger:  log,
		spec:    spec,
		baseCtx: context.Background(),
	}
	s.entry = s.cron.Schedule(sched, cron.FuncJob(s.runCycle))
	return s, nil
}

// Run starts the schedule and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
	s.logger.Info("scheduler started", "cron", s.spec, "next", s.Next().Format(time.RFC3339))

	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler stopped")
}

// Next returns the next activation time, or the zero time before Run.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) runCycle() {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous generation still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in scheduler cycle", "panic", fmt.Sprint(r))
		}
	}()

	s.logger.Info("scheduled generation starting")
	res, err := s.runner.Run(s.baseCtx, pipeline.TriggerCron)
	if err != nil {
		s.logger.Error("scheduled generation failed", "error", err)
		return
	}
	s.logger.Info("scheduled generation completed", "id", res.NewsletterID, "total_seconds", res.TotalTime.Seconds())
}
