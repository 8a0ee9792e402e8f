package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maltedev/indiehackers-scraper/internal/database"
	"github.com/maltedev/indiehackers-scraper/internal/models"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeScrapeCompleted is published once a run has been stored
	EventTypeScrapeCompleted EventType = "SCRAPE_COMPLETED"

	aggregateType = "scrape_run"
	eventSource   = "scraper"
)

// ScrapeCompletedPayload represents the payload for SCRAPE_COMPLETED event
type ScrapeCompletedPayload struct {
	EventID      string              `json:"event_id"`
	EventType    string              `json:"event_type"`
	Timestamp    time.Time           `json:"timestamp"`
	RunID        string              `json:"run_id"`
	ProductCount int                 `json:"product_count"`
	TierCounts   map[models.Tier]int `json:"tier_counts"`
	Source       string              `json:"source"`
}

// Publisher stores finished runs and announces them through the
// transactional outbox.
type Publisher struct {
	db     *database.DB
	outbox *database.OutboxRepository
	logger *slog.Logger
}

func NewPublisher(db *database.DB, logger *slog.Logger) *Publisher {
	return &Publisher{
		db:     db,
		outbox: database.NewOutboxRepository(db),
		logger: logger.With("component", "event_publisher"),
	}
}

// Save writes the run, its records and a SCRAPE_COMPLETED event in one
// transaction.
func (p *Publisher) Save(ctx context.Context, run *models.Run) error {
	payload := newScrapeCompletedPayload(run, time.Now())

	event, err := outboxEvent(payload)
	if err != nil {
		return err
	}

	err = p.db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := database.InsertRunWithTx(ctx, tx, run); err != nil {
			return err
		}
		return p.outbox.InsertWithTx(ctx, tx, event)
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("event published to outbox",
		"type", payload.EventType,
		"event_id", payload.EventID,
		"run_id", payload.RunID,
		"product_count", payload.ProductCount,
		"outbox_id", event.ID,
	)

	return nil
}

func newScrapeCompletedPayload(run *models.Run, now time.Time) *ScrapeCompletedPayload {
	counts := make(map[models.Tier]int, len(run.Counts))
	for tier, n := range run.Counts {
		counts[tier] = n
	}

	return &ScrapeCompletedPayload{
		EventID:      uuid.New().String(),
		EventType:    string(EventTypeScrapeCompleted),
		Timestamp:    now,
		RunID:        run.ID.String(),
		ProductCount: run.Len(),
		TierCounts:   counts,
		Source:       eventSource,
	}
}

func outboxEvent(payload *ScrapeCompletedPayload) (*database.OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	return &database.OutboxEvent{
		AggregateType: aggregateType,
		AggregateID:   payload.RunID,
		EventType:     payload.EventType,
		Payload:       data,
		TargetStream:  database.DefaultStream,
	}, nil
}
