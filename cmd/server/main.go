package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camuig/alphaminr/internal/ai"
	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
	"github.com/camuig/alphaminr/internal/market"
	"github.com/camuig/alphaminr/internal/pipeline"
	"github.com/camuig/alphaminr/internal/scheduler"
	"github.com/camuig/alphaminr/internal/search"
	"github.com/camuig/alphaminr/internal/storage"
	"github.com/camuig/alphaminr/internal/telegram"
	"github.com/camuig/alphaminr/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides storage.path)")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	// Init logger
	log := logger.New(cfg.Logging.Level)
	log.Info("starting alphaminr", "provider", cfg.Generator.Provider, "model", cfg.Generator.Model)

	// Init database
	db, err := storage.NewDatabase(cfg.Storage.Path)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db)
	repo := storage.NewRepository(db)

	// Context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init services
	generator, err := ai.NewGenerator(ctx, cfg, log)
	if err != nil {
		log.Error("generator init failed", "error", err)
		os.Exit(1)
	}
	searcher := search.NewClient(cfg, log)
	notifier := telegram.NewNotifier(cfg, log)
	pipe := pipeline.New(
		market.NewCollector(searcher, log),
		searcher,
		generator,
		repo,
		notifier,
		cfg.ScheduleLocation(),
		log,
	)
	webServer := web.NewServer(pipe, repo, searcher, cfg, log)

	// Start scheduler in goroutine
	if cfg.Schedule.Cron != "" {
		sched, err := scheduler.NewScheduler(cfg.Schedule.Cron, cfg.ScheduleLocation(), pipe, log)
		if err != nil {
			log.Error("scheduler init failed", "error", err)
			os.Exit(1)
		}
		go sched.Run(ctx)
	} else {
		log.Info("no schedule configured, relying on /api/cron/generate")
	}

	// Start web server in goroutine
	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	notifier.NotifyStatus("Alphaminr generator started")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	// Graceful shutdown
	cancel() // stop scheduler

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	notifier.NotifyStatus("Alphaminr generator stopped")
	log.Info("alphaminr stopped")
}
