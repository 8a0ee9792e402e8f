package models

import (
	"time"

	"github.com/google/uuid"
)

// Run is the aggregate result of one extraction cycle.
type Run struct {
	ID          uuid.UUID    `json:"id"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at,omitempty"`
	Records     []Record     `json:"products"`
	Counts      map[Tier]int `json:"tier_counts"`
}

func NewRun() *Run {
	return &Run{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Records:   make([]Record, 0),
		Counts:    make(map[Tier]int),
	}
}

// Add tags every record with tier and appends them after the records
// already collected.
func (r *Run) Add(tier Tier, records []Record) {
	for i := range records {
		records[i].Tier = tier
	}
	r.Records = append(r.Records, records...)
	r.Counts[tier] += len(records)
}

func (r *Run) Complete() {
	r.CompletedAt = time.Now()
}

func (r *Run) Len() int {
	return len(r.Records)
}
