package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/maltedev/indiehackers-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultFileSaveWritesFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideas.json")
	rf := NewResultFile(path)

	run := models.NewRun()
	run.Add(models.TierLow, []models.Record{{
		Title:        "Acme",
		Tagline:      "Rockets",
		RevenueLabel: "$4K",
		Link:         "https://www.indiehackers.com/product/acme",
	}})

	require.NoError(t, rf.Save(context.Background(), run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Acme", raw[0]["title"])
	assert.Equal(t, "Rockets", raw[0]["tagline"])
	assert.Equal(t, "$4K", raw[0]["mrr"])
	assert.Equal(t, "https://www.indiehackers.com/product/acme", raw[0]["link"])
	assert.Equal(t, "low", raw[0]["mrrTier"])
	assert.NotContains(t, raw[0], "missing")

	assert.Contains(t, string(data), "\n  {\n    \"title\"")
}

func TestResultFileOverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "ideas.json")
	rf := NewResultFile(path)
	ctx := context.Background()

	first := models.NewRun()
	first.Add(models.TierLow, []models.Record{{Title: "A"}, {Title: "B"}})
	require.NoError(t, rf.Save(ctx, first))

	second := models.NewRun()
	second.Add(models.TierHigh, []models.Record{{Title: "C"}})
	require.NoError(t, rf.Save(ctx, second))

	records, err := rf.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "C", records[0].Title)
	assert.Equal(t, models.TierHigh, records[0].Tier)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestResultFileEmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideas.json")
	rf := NewResultFile(path)

	require.NoError(t, rf.Save(context.Background(), &models.Run{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestResultFileLoadMissing(t *testing.T) {
	rf := NewResultFile(filepath.Join(t.TempDir(), "absent.json"))

	_, err := rf.Load()
	assert.True(t, os.IsNotExist(err))
}
