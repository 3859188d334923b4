package repository

import "newsly-backend/internal/newsletter/domain"

// SelectionRepository persists the curated sender selection. Save replaces
// the whole selection; there are no partial updates.
type SelectionRepository interface {
	Load() ([]domain.SelectionEntry, error)
	Save(entries []domain.SelectionEntry) error
}
