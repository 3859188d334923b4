package domain

import (
	"context"
	"time"
)

// SenderCandidate is a distinct sender discovered in the mailbox during a
// scan. Count is the number of messages seen from it within the window.
type SenderCandidate struct {
	Name   string `json:"name"`
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}

// SelectionEntry is one curated sender. The selection is persisted as an
// ordered sequence; Sender is the unique key (normalized, lower-case).
type SelectionEntry struct {
	Name     string `json:"name"`
	Sender   string `json:"sender"`
	Count30d int    `json:"count30d"`
	Selected bool   `json:"selected"`
}

// FetchedContent is the transient result of pulling a sender's latest message.
// Date is the epoch default when no message was found or its date was
// unparseable; absence is data, not a failure.
type FetchedContent struct {
	Body string
	Date time.Time
}

// SummaryResult is a tiered summary. Either the summarization service or the
// fallback extractor produces it; all fields are populated with best-effort
// values whenever the input text was non-empty.
type SummaryResult struct {
	Title      string   `json:"title"`
	Teaser     string   `json:"teaser"`
	Long       string   `json:"long"`
	Highlights []string `json:"highlights"`
}

// DigestCard is the externally visible unit of the digest, one per processed
// sender. Description duplicates Teaser for backward compatibility with older
// clients.
type DigestCard struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Minutes     int       `json:"minutes"`
	Tag         string    `json:"tag"`
	Description string    `json:"description"`
	Teaser      string    `json:"teaser"`
	LongSummary string    `json:"long_summary"`
	Highlights  []string  `json:"highlights"`
	Sender      string    `json:"sender"`
	Date        time.Time `json:"date"`
	IsToday     bool      `json:"is_today"`
}

// Epoch is the default timestamp for content with no known date. Cards
// carrying it sort after every card with a real timestamp.
func Epoch() time.Time {
	return time.Unix(0, 0).UTC()
}

// Mailbox is the access surface the digest pipeline needs from a mailbox
// backend. Implementations exist for the Gmail API, IMAP and the tool-call
// transport.
type Mailbox interface {
	// ScanCandidates inventories distinct senders seen within the lookback
	// window.
	ScanCandidates(ctx context.Context, lookbackDays int) ([]SenderCandidate, error)

	// FetchLatestFromSender returns the body and date of the most recent
	// message from the sender within the lookback window. When no message is
	// found it returns empty content and the epoch date with a nil error.
	FetchLatestFromSender(ctx context.Context, sender string, lookbackDays int) (*FetchedContent, error)

	// Send delivers a message, HTML with an optional plain-text alternative.
	Send(ctx context.Context, to, subject, html, text string) error
}
