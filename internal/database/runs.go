package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maltedev/indiehackers-scraper/internal/models"
)

// RunSummary is one row of scrape_runs.
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	ProductCount int       `json:"product_count"`
	LowCount     int       `json:"low_count"`
	MidCount     int       `json:"mid_count"`
	HighCount    int       `json:"high_count"`
}

// InsertRunWithTx stores the run and all of its records in order. Runs with
// an untagged or unknown tier are rejected before anything is written.
func InsertRunWithTx(ctx context.Context, tx pgx.Tx, run *models.Run) error {
	for i, r := range run.Records {
		if !r.Tier.IsValid() {
			return fmt.Errorf("record %d (%q) has invalid tier %q", i, r.Title, r.Tier)
		}
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO scrape_runs (
			id, started_at, completed_at, product_count,
			low_count, mid_count, high_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.StartedAt, run.CompletedAt, run.Len(),
		run.Counts[models.TierLow], run.Counts[models.TierMid], run.Counts[models.TierHigh],
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if run.Len() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, r := range run.Records {
		missing := r.Missing
		if missing == nil {
			missing = []string{}
		}
		batch.Queue(`
			INSERT INTO scraped_products (
				run_id, position, title, tagline, mrr, link, mrr_tier, missing
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			run.ID, i, r.Title, r.Tagline, r.RevenueLabel, r.Link, string(r.Tier), missing,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}

	return nil
}

// ListRuns returns the most recent runs first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]*RunSummary, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, started_at, completed_at, product_count,
		       low_count, mid_count, high_count
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunSummary
	for rows.Next() {
		r := &RunSummary{}
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.CompletedAt, &r.ProductCount,
			&r.LowCount, &r.MidCount, &r.HighCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}

// RunRecords loads the records of one run in scrape order.
func (db *DB) RunRecords(ctx context.Context, runID uuid.UUID) ([]models.Record, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT title, tagline, mrr, link, mrr_tier, missing
		FROM scraped_products
		WHERE run_id = $1
		ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load run records: %w", err)
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		var r models.Record
		var tier string
		if err := rows.Scan(&r.Title, &r.Tagline, &r.RevenueLabel, &r.Link, &tier, &r.Missing); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Tier = models.Tier(tier)
		if len(r.Missing) == 0 {
			r.Missing = nil
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
