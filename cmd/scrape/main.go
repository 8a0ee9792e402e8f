package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/indiehackers-scraper/internal/browser"
	"github.com/maltedev/indiehackers-scraper/internal/config"
	"github.com/maltedev/indiehackers-scraper/internal/database"
	"github.com/maltedev/indiehackers-scraper/internal/events"
	"github.com/maltedev/indiehackers-scraper/internal/logging"
	"github.com/maltedev/indiehackers-scraper/internal/models"
	"github.com/maltedev/indiehackers-scraper/internal/scraper"
	"github.com/maltedev/indiehackers-scraper/internal/storage"
)

// scrape runs one extraction cycle and exits. Failures are logged and the
// process still exits normally.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return
	}

	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file := storage.NewResultFile(cfg.Scraper.OutputPath)
	sinks := []scraper.Sink{file}

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare database", "error", err)
			return
		}
		sinks = append(sinks, events.NewPublisher(db, logger))
	}

	s := scraper.NewScraper(scraper.Config{
		Browser: &browser.Options{
			Headless:       cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			Args:           browser.DefaultArgs(),
		},
		Options: scraper.Options{BaseURL: cfg.Scraper.BaseURL},
		Credentials: scraper.Credentials{
			Email:    cfg.Scraper.Email,
			Password: cfg.Scraper.Password,
		},
		Sinks: sinks,
	}, logger)

	run, err := s.Run(ctx)
	if err != nil {
		logger.Error("scrape failed", "error", err)
		return
	}

	logger.Info("scrape finished",
		"run_id", run.ID,
		"products", run.Len(),
		"low", run.Counts[models.TierLow],
		"mid", run.Counts[models.TierMid],
		"high", run.Counts[models.TierHigh],
		"output", file.Path())

	written, err := file.Load()
	if err != nil {
		logger.Error("failed to read back result file", "error", err, "output", file.Path())
	} else if len(written) != run.Len() {
		logger.Error("result file does not match run", "written", len(written), "products", run.Len())
	}

	if db == nil {
		return
	}

	stored, err := db.RunRecords(ctx, run.ID)
	if err != nil {
		logger.Error("failed to read back stored run", "error", err, "run_id", run.ID)
	} else if len(stored) != run.Len() {
		logger.Error("stored run does not match", "stored", len(stored), "products", run.Len(), "run_id", run.ID)
	}

	runs, err := db.ListRuns(ctx, 5)
	if err != nil {
		logger.Warn("failed to list recent runs", "error", err)
		return
	}
	for _, r := range runs {
		logger.Info("recent run", "run_id", r.ID, "started_at", r.StartedAt, "products", r.ProductCount)
	}
}
