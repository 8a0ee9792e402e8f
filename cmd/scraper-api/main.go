package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/indiehackers-scraper/internal/api"
	"github.com/maltedev/indiehackers-scraper/internal/browser"
	"github.com/maltedev/indiehackers-scraper/internal/config"
	"github.com/maltedev/indiehackers-scraper/internal/database"
	"github.com/maltedev/indiehackers-scraper/internal/events"
	"github.com/maltedev/indiehackers-scraper/internal/logging"
	"github.com/maltedev/indiehackers-scraper/internal/scraper"
	"github.com/maltedev/indiehackers-scraper/internal/storage"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sinks := []scraper.Sink{storage.NewResultFile(cfg.Scraper.OutputPath)}
	var relay *database.Relay

	if cfg.Database.Enabled {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}

		sinks = append(sinks, events.NewPublisher(db, logger))

		if cfg.Redis.Enabled {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer redisClient.Close()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Error("failed to connect to Redis", "error", err)
				os.Exit(1)
			}

			relay = database.NewRelay(db, redisClient, logger, database.RelayConfig{
				PollInterval: cfg.Redis.PollInterval,
			})
			go func() {
				if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("relay stopped with error", "error", err)
				}
			}()
		}
	}

	s := scraper.NewScraper(scraper.Config{
		Browser: &browser.Options{
			Headless:       cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			Args:           browser.DefaultArgs(),
		},
		Options: scraper.Options{
			BaseURL: cfg.Scraper.BaseURL,
		},
		Credentials: scraper.Credentials{
			Email:    cfg.Scraper.Email,
			Password: cfg.Scraper.Password,
		},
		Sinks: sinks,
	}, logger)

	// Scrapes run under ctx so shutdown aborts them and releases the browser.
	handlers := api.NewHandlers(ctx, s, logger)
	if relay != nil {
		handlers.WithBacklog(relay)
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	<-stopped
	handlers.Wait()
	logger.Info("server stopped")
}
