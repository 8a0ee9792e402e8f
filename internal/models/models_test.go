package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTiers(t *testing.T) {
	tiers := DefaultTiers("https://www.indiehackers.com/")

	require.Len(t, tiers, 3)
	assert.Equal(t, TierLow, tiers[0].Label)
	assert.Equal(t, TierMid, tiers[1].Label)
	assert.Equal(t, TierHigh, tiers[2].Label)
	assert.Equal(t, "https://www.indiehackers.com/products?minRevenue=0&maxRevenue=10000", tiers[0].URL)
	assert.Equal(t, "https://www.indiehackers.com/products?minRevenue=10000&maxRevenue=100000", tiers[1].URL)
	assert.Equal(t, "https://www.indiehackers.com/products?minRevenue=100000", tiers[2].URL)
}

func TestTierDefinitionContains(t *testing.T) {
	tiers := DefaultTiers("https://example.com")

	tests := []struct {
		name   string
		tier   TierDefinition
		amount float64
		want   bool
	}{
		{"low lower bound", tiers[0], 0, true},
		{"low inside", tiers[0], 4500, true},
		{"low above", tiers[0], 12000, false},
		{"mid boundary", tiers[1], 10000, true},
		{"mid below", tiers[1], 9000, false},
		{"high unbounded", tiers[2], 5_000_000, true},
		{"high below", tiers[2], 99_999, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.Contains(tt.amount))
		})
	}
}

func TestTierIsValid(t *testing.T) {
	assert.True(t, TierLow.IsValid())
	assert.True(t, TierHigh.IsValid())
	assert.False(t, Tier("enterprise").IsValid())
	assert.False(t, Tier("").IsValid())
}

func TestRunAddTagsAndPreservesOrder(t *testing.T) {
	run := NewRun()

	run.Add(TierLow, []Record{{Title: "A", Tier: TierHigh}, {Title: "B"}})
	run.Add(TierMid, nil)
	run.Add(TierHigh, []Record{{Title: "C"}})

	require.Equal(t, 3, run.Len())
	assert.Equal(t, "A", run.Records[0].Title)
	assert.Equal(t, TierLow, run.Records[0].Tier)
	assert.Equal(t, "B", run.Records[1].Title)
	assert.Equal(t, TierLow, run.Records[1].Tier)
	assert.Equal(t, "C", run.Records[2].Title)
	assert.Equal(t, TierHigh, run.Records[2].Tier)

	assert.Equal(t, 2, run.Counts[TierLow])
	assert.Equal(t, 0, run.Counts[TierMid])
	assert.Equal(t, 1, run.Counts[TierHigh])
}

func TestRecordHas(t *testing.T) {
	r := Record{Title: "A", Missing: []string{FieldTagline}}

	assert.True(t, r.Has(FieldTitle))
	assert.False(t, r.Has(FieldTagline))
	assert.False(t, r.IsComplete())
	assert.True(t, (&Record{}).IsComplete())
}
