package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/camuig/alphaminr/internal/ai"
	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
	"github.com/camuig/alphaminr/internal/market"
	"github.com/camuig/alphaminr/internal/pipeline"
	"github.com/camuig/alphaminr/internal/search"
	"github.com/camuig/alphaminr/internal/storage"
	"github.com/camuig/alphaminr/internal/telegram"
)

// generate runs the pipeline once and exits 0 on success, 1 on failure, for
// use from an external scheduler.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "", "path to SQLite database (overrides storage.path)")
	printHTML := flag.Bool("print", false, "write the rendered HTML to stdout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	log := logger.New(cfg.Logging.Level)

	db, err := storage.NewDatabase(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database init error: %v\n", err)
		os.Exit(1)
	}
	defer storage.Close(db)

	ctx := context.Background()
	generator, err := ai.NewGenerator(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generator init error: %v\n", err)
		os.Exit(1)
	}

	searcher := search.NewClient(cfg, log)
	pipe := pipeline.New(
		market.NewCollector(searcher, log),
		searcher,
		generator,
		storage.NewRepository(db),
		telegram.NewNotifier(cfg, log),
		cfg.ScheduleLocation(),
		log,
	)

	res, err := pipe.Run(ctx, pipeline.TriggerCLI)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		storage.Close(db)
		os.Exit(1)
	}

	if *printHTML {
		fmt.Println(res.HTML)
		return
	}
	fmt.Printf("Newsletter %s generated in %.1fs (total %.1fs)\n",
		res.NewsletterID, res.GenerationTime.Seconds(), res.TotalTime.Seconds())
}
