package usecase

import (
	"context"

	"newsly-backend/internal/newsletter/domain"
	"newsly-backend/pkg/ai"
)

// NewsletterUsecase is the business logic surface for newsletter curation
// and digest building.
type NewsletterUsecase interface {
	// ScanCandidates inventories senders seen in the mailbox recently, merged
	// with the stored selection so existing choices survive a rescan.
	ScanCandidates(ctx context.Context) ([]domain.SelectionEntry, error)

	// SaveSelection replaces the stored selection wholesale.
	SaveSelection(entries []domain.SelectionEntry) error

	// Selection returns the current stored selection.
	Selection() ([]domain.SelectionEntry, error)

	// BuildDigest assembles one digest card per selected sender. It never
	// errors: per-sender failures degrade that sender's card and an empty
	// selection yields an empty slice.
	BuildDigest(ctx context.Context, fast bool) []domain.DigestCard

	// SetAIService attaches the summarization service. A nil service routes
	// every card through the heuristic extractor.
	SetAIService(svc ai.SummarizerService)
}
