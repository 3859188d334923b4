package ai

import (
	"context"

	"newsly-backend/internal/newsletter/domain"
)

// SummarizerService is the interface for the external summarization service.
// Implement this interface to add new providers; the digest pipeline only
// ever talks to it through these three calls and falls back to heuristic
// extraction when they fail.
type SummarizerService interface {
	// SummarizeTiered produces a title, a short teaser and a long summary for
	// newsletter content, preserving the source language. It degrades
	// internally to a plain short summary and returns an error only when no
	// usable text could be produced at all.
	SummarizeTiered(ctx context.Context, content, sender, dateISO string) (*domain.SummaryResult, error)

	// SummarizeText produces a 2-3 sentence summary of the text.
	SummarizeText(ctx context.Context, text string) (string, error)

	// LabelTopic extracts a compact 1-2 word topic label for a newsletter.
	LabelTopic(ctx context.Context, subject, body string) (string, error)
}
