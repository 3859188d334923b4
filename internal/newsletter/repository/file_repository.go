package repository

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"newsly-backend/internal/newsletter/domain"
)

const selectionVersion = 1

// selectionFile is the on-disk envelope. The version field exists so a
// future format change can migrate instead of silently misreading.
type selectionFile struct {
	Version  int                     `json:"version"`
	Selected []domain.SelectionEntry `json:"selected"`
}

// fileSelectionRepository stores the selection as one JSON file.
type fileSelectionRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileSelectionRepository(path string) SelectionRepository {
	return &fileSelectionRepository{path: path}
}

// Load reads the stored selection. A missing or unreadable file is an empty
// selection, not an error: the store must never block the pipeline.
func (r *fileSelectionRepository) Load() ([]domain.SelectionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Selection] failed to read %s, treating as empty: %v", r.path, err)
		}
		return []domain.SelectionEntry{}, nil
	}

	var file selectionFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("[Selection] corrupt selection file %s, treating as empty: %v", r.path, err)
		return []domain.SelectionEntry{}, nil
	}
	if file.Selected == nil {
		return []domain.SelectionEntry{}, nil
	}
	return file.Selected, nil
}

// Save replaces the stored selection. Write failures are surfaced: losing a
// save silently would desync the user's curation.
func (r *fileSelectionRepository) Save(entries []domain.SelectionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entries == nil {
		entries = []domain.SelectionEntry{}
	}

	data, err := json.MarshalIndent(selectionFile{Version: selectionVersion, Selected: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create selection dir: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write selection: %w", err)
	}
	return nil
}
