package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/maltedev/indiehackers-scraper/internal/models"
)

// ResultFile holds the records of the latest successful run. Every Save
// replaces the previous content.
type ResultFile struct {
	mu       sync.Mutex
	filename string
}

func NewResultFile(filename string) *ResultFile {
	return &ResultFile{filename: filename}
}

func (rf *ResultFile) Path() string {
	return rf.filename
}

func (rf *ResultFile) Save(_ context.Context, run *models.Run) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	records := run.Records
	if records == nil {
		records = []models.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if dir := filepath.Dir(rf.filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	// Write to temp file first for atomicity
	tmpFile := rf.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	if err := os.Rename(tmpFile, rf.filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to replace %s: %w", rf.filename, err)
	}

	return nil
}

func (rf *ResultFile) Load() ([]models.Record, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	data, err := os.ReadFile(rf.filename)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", rf.filename, err)
	}
	return records, nil
}
