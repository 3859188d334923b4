package dto

import "newsly-backend/internal/newsletter/domain"

// ScanResponse lists discovered senders merged with the stored selection.
type ScanResponse struct {
	Items []domain.SelectionEntry `json:"items"`
}

// SaveSelectionRequest replaces the stored selection wholesale.
type SaveSelectionRequest struct {
	Selected []domain.SelectionEntry `json:"selected"`
}

// FeaturedResponse carries the assembled digest cards.
type FeaturedResponse struct {
	Items []domain.DigestCard `json:"items"`
}
