package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/maltedev/indiehackers-scraper/internal/models"
	"golang.org/x/sync/singleflight"
)

const scrapeKey = "scrape"

// Runner performs one extraction cycle.
type Runner interface {
	Run(ctx context.Context) (*models.Run, error)
}

// BacklogReporter reports undelivered outbox events.
type BacklogReporter interface {
	Backlog(ctx context.Context) (pending, deadLetter int64, err error)
}

type Handlers struct {
	base     context.Context
	runner   Runner
	backlog  BacklogReporter
	group    singleflight.Group
	inFlight atomic.Bool
	running  sync.WaitGroup
	logger   *slog.Logger
}

// NewHandlers runs every scrape under base, so cancelling base aborts a
// running scrape regardless of which requests are waiting on it.
func NewHandlers(base context.Context, runner Runner, logger *slog.Logger) *Handlers {
	return &Handlers{
		base:   base,
		runner: runner,
		logger: logger.With("component", "api"),
	}
}

// WithBacklog adds outbox counts to the health report.
func (h *Handlers) WithBacklog(b BacklogReporter) *Handlers {
	h.backlog = b
	return h
}

// ScrapeResponse is the body of a successful scrape.
type ScrapeResponse struct {
	Message  string          `json:"message"`
	Products []models.Record `json:"products"`
}

type HealthResponse struct {
	Status           string         `json:"status"`
	ScrapeInProgress bool           `json:"scrape_in_progress"`
	Outbox           *OutboxBacklog `json:"outbox,omitempty"`
}

type OutboxBacklog struct {
	Pending    int64 `json:"pending"`
	DeadLetter int64 `json:"dead_letter"`
}

// Scrape runs an extraction cycle and returns its records. Requests that
// arrive while a cycle is running wait for it and share its result.
func (h *Handlers) Scrape(w http.ResponseWriter, r *http.Request) {
	v, err, shared := h.group.Do(scrapeKey, func() (interface{}, error) {
		h.running.Add(1)
		defer h.running.Done()
		h.inFlight.Store(true)
		defer h.inFlight.Store(false)
		return h.runner.Run(h.base)
	})
	if err != nil {
		h.logger.Error("scrape failed", "error", err, "shared", shared)
		h.respondError(w, http.StatusInternalServerError, "Scraping failed")
		return
	}

	run := v.(*models.Run)
	products := run.Records
	if products == nil {
		products = []models.Record{}
	}

	h.respondJSON(w, http.StatusOK, ScrapeResponse{
		Message:  "Scraping complete",
		Products: products,
	})
}

// Wait blocks until the running scrape, if any, has returned.
func (h *Handlers) Wait() {
	h.running.Wait()
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:           "ok",
		ScrapeInProgress: h.inFlight.Load(),
	}

	if h.backlog != nil {
		pending, deadLetter, err := h.backlog.Backlog(r.Context())
		if err != nil {
			h.logger.Error("failed to read outbox backlog", "error", err)
			resp.Status = "degraded"
		} else {
			resp.Outbox = &OutboxBacklog{Pending: pending, DeadLetter: deadLetter}
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// NewRouter mounts the handlers. There is no request timeout: a scrape
// takes minutes.
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/scrape", h.Scrape)

	return r
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
