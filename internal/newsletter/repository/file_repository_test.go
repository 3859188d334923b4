package repository

import (
	"os"
	"path/filepath"
	"testing"

	"newsly-backend/internal/newsletter/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSelectionRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "selected.json")
	repo := NewFileSelectionRepository(path)

	entries := []domain.SelectionEntry{
		{Name: "Morning Brew", Sender: "crew@morningbrew.com", Count30d: 22, Selected: true},
		{Name: "The Batch", Sender: "hello@deeplearning.ai", Count30d: 4, Selected: false},
	}
	require.NoError(t, repo.Save(entries))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, entries, loaded)
}

func TestFileSelectionRepositorySaveReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selected.json")
	repo := NewFileSelectionRepository(path)

	require.NoError(t, repo.Save([]domain.SelectionEntry{
		{Name: "A", Sender: "a@x.com", Selected: true},
		{Name: "B", Sender: "b@x.com", Selected: true},
	}))
	require.NoError(t, repo.Save([]domain.SelectionEntry{
		{Name: "C", Sender: "c@x.com", Selected: true},
	}))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "c@x.com", loaded[0].Sender)
}

func TestFileSelectionRepositoryMissingFileIsEmpty(t *testing.T) {
	repo := NewFileSelectionRepository(filepath.Join(t.TempDir(), "nope.json"))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NotNil(t, loaded)
}

func TestFileSelectionRepositoryCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selected.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	repo := NewFileSelectionRepository(path)

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileSelectionRepositoryVersionedEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selected.json")
	repo := NewFileSelectionRepository(path)
	require.NoError(t, repo.Save([]domain.SelectionEntry{{Name: "A", Sender: "a@x.com", Selected: true}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": 1`)
	assert.Contains(t, string(raw), `"selected"`)
}
