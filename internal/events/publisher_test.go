package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/indiehackers-scraper/internal/database"
	"github.com/maltedev/indiehackers-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *models.Run {
	run := models.NewRun()
	run.Add(models.TierLow, []models.Record{{Title: "A"}, {Title: "B"}})
	run.Add(models.TierMid, nil)
	run.Add(models.TierHigh, []models.Record{{Title: "C"}})
	run.Complete()
	return run
}

func TestNewScrapeCompletedPayload(t *testing.T) {
	run := sampleRun()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	payload := newScrapeCompletedPayload(run, now)

	_, err := uuid.Parse(payload.EventID)
	require.NoError(t, err)
	assert.Equal(t, "SCRAPE_COMPLETED", payload.EventType)
	assert.Equal(t, now, payload.Timestamp)
	assert.Equal(t, run.ID.String(), payload.RunID)
	assert.Equal(t, 3, payload.ProductCount)
	assert.Equal(t, map[models.Tier]int{models.TierLow: 2, models.TierMid: 0, models.TierHigh: 1}, payload.TierCounts)
	assert.Equal(t, "scraper", payload.Source)

	run.Counts[models.TierLow] = 99
	assert.Equal(t, 2, payload.TierCounts[models.TierLow])
}

func TestOutboxEvent(t *testing.T) {
	run := sampleRun()
	payload := newScrapeCompletedPayload(run, time.Now())

	event, err := outboxEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, "scrape_run", event.AggregateType)
	assert.Equal(t, run.ID.String(), event.AggregateID)
	assert.Equal(t, "SCRAPE_COMPLETED", event.EventType)
	assert.Equal(t, database.DefaultStream, event.TargetStream)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, run.ID.String(), decoded["run_id"])
	assert.Equal(t, float64(3), decoded["product_count"])
	assert.Equal(t, map[string]interface{}{"low": float64(2), "mid": float64(0), "high": float64(1)}, decoded["tier_counts"])
	assert.NotContains(t, decoded, "products")
}

func TestPublisherSave(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("set INTEGRATION_TEST=1 to run database tests")
	}

	ctx := context.Background()
	db, err := database.New(ctx, database.Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "indiehackers_test",
	})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))

	run := sampleRun()
	publisher := NewPublisher(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, publisher.Save(ctx, run))

	records, err := db.RunRecords(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	var count int
	err = db.QueryRow(ctx,
		"SELECT COUNT(*) FROM outbox_event WHERE aggregate_id = $1 AND event_type = $2",
		run.ID.String(), "SCRAPE_COMPLETED").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Error(t, publisher.Save(ctx, run), "a run is stored once")
}
