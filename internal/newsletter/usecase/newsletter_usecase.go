package usecase

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"newsly-backend/internal/newsletter/domain"
	"newsly-backend/internal/newsletter/repository"
	"newsly-backend/pkg/ai"
	"newsly-backend/pkg/config"
	"newsly-backend/pkg/textclean"
)

type newsletterUsecase struct {
	selectionRepo repository.SelectionRepository
	mailbox       domain.Mailbox
	aiService     ai.SummarizerService
	config        *config.Config
	location      *time.Location
}

func NewNewsletterUsecase(selectionRepo repository.SelectionRepository, mailbox domain.Mailbox, cfg *config.Config) NewsletterUsecase {
	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Printf("[Newsletter] unknown timezone %q, using UTC: %v", cfg.DefaultTimezone, err)
		loc = time.UTC
	}
	return &newsletterUsecase{
		selectionRepo: selectionRepo,
		mailbox:       mailbox,
		config:        cfg,
		location:      loc,
	}
}

func (u *newsletterUsecase) SetAIService(svc ai.SummarizerService) {
	u.aiService = svc
}

// ScanCandidates merges freshly discovered senders with the stored selection:
// known senders keep their selected flag, new ones arrive unselected with
// their observed volume.
func (u *newsletterUsecase) ScanCandidates(ctx context.Context) ([]domain.SelectionEntry, error) {
	candidates, err := u.mailbox.ScanCandidates(ctx, u.config.ScanLookbackDays)
	if err != nil {
		return nil, err
	}

	stored, err := u.selectionRepo.Load()
	if err != nil {
		stored = nil
	}
	selectedByAddr := make(map[string]domain.SelectionEntry, len(stored))
	for _, e := range stored {
		selectedByAddr[e.Sender] = e
	}

	entries := make([]domain.SelectionEntry, 0, len(candidates))
	for _, c := range candidates {
		entry := domain.SelectionEntry{
			Name:     c.Name,
			Sender:   c.Sender,
			Count30d: c.Count,
		}
		if prev, ok := selectedByAddr[c.Sender]; ok {
			entry.Selected = prev.Selected
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (u *newsletterUsecase) SaveSelection(entries []domain.SelectionEntry) error {
	return u.selectionRepo.Save(entries)
}

func (u *newsletterUsecase) Selection() ([]domain.SelectionEntry, error) {
	return u.selectionRepo.Load()
}

// BuildDigest produces one card per selected sender, capped per mode, sorted
// by content timestamp descending. Senders whose processing fails still get
// a degraded card; nothing aborts the build.
func (u *newsletterUsecase) BuildDigest(ctx context.Context, fast bool) []domain.DigestCard {
	entries, err := u.selectionRepo.Load()
	if err != nil {
		log.Printf("[Digest] selection unavailable, building empty digest: %v", err)
		return []domain.DigestCard{}
	}

	var selected []domain.SelectionEntry
	for _, e := range entries {
		if e.Selected {
			selected = append(selected, e)
		}
	}
	if len(selected) == 0 {
		return []domain.DigestCard{}
	}

	maxCards := u.config.MaxCards
	if fast {
		maxCards = u.config.MaxCardsFast
	}
	if len(selected) > maxCards {
		selected = selected[:maxCards]
	}

	cards := make([]domain.DigestCard, 0, len(selected))
	for i, entry := range selected {
		cards = append(cards, u.buildCard(ctx, entry, fast, i+1))
	}

	// Epoch-dated cards predate everything real, so descending order puts
	// them last without a special case.
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Date.After(cards[j].Date)
	})
	return cards
}

// fetchContent applies the per-mode retrieval policy. Fast mode waits as
// long as the fetch takes but swallows errors; normal mode races the fetch
// against the configured budget and detaches on expiry.
func (u *newsletterUsecase) fetchContent(ctx context.Context, sender string, fast bool) *domain.FetchedContent {
	empty := &domain.FetchedContent{Date: domain.Epoch()}

	if fast {
		fetched, err := u.mailbox.FetchLatestFromSender(ctx, sender, u.config.LookbackDays)
		if err != nil || fetched == nil {
			log.Printf("[Digest] fetch from %s failed: %v", sender, err)
			return empty
		}
		return fetched
	}

	type fetchResult struct {
		content *domain.FetchedContent
		err     error
	}
	done := make(chan fetchResult, 1)
	go func() {
		fetched, err := u.mailbox.FetchLatestFromSender(ctx, sender, u.config.LookbackDays)
		done <- fetchResult{content: fetched, err: err}
	}()

	timer := time.NewTimer(u.config.FetchTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil || r.content == nil {
			log.Printf("[Digest] fetch from %s failed: %v", sender, r.err)
			return empty
		}
		return r.content
	case <-timer.C:
		// Detach: the goroutine finishes into the buffered channel and its
		// result is discarded.
		log.Printf("[Digest] fetch from %s: %v after %s", sender, domain.ErrFetchTimeout, u.config.FetchTimeout)
		return empty
	}
}

// buildCard runs the full per-sender ladder: fetch, normalize, summarize
// (AI then extractor then placeholder), then derive the card metadata.
func (u *newsletterUsecase) buildCard(ctx context.Context, entry domain.SelectionEntry, fast bool, id int) domain.DigestCard {
	fetched := u.fetchContent(ctx, entry.Sender, fast)

	clean := textclean.Clean(fetched.Body)
	if utf8.RuneCountInString(clean) < 40 {
		clean = strings.TrimSpace(fetched.Body)
	}

	title := entry.Name
	if strings.TrimSpace(title) == "" {
		title = entry.Sender
	}

	var teaser, longSummary string
	var highlights []string

	if clean != "" {
		if fast || u.aiService == nil {
			teaser, longSummary, highlights = buildFallbacks(clean)
		} else {
			res, err := u.aiService.SummarizeTiered(ctx, clean, entry.Sender, fetched.Date.Format(time.RFC3339))
			if err != nil || res == nil || (res.Teaser == "" && res.Long == "") {
				log.Printf("[Digest] summarization for %s failed, using extractor: %v", entry.Sender, err)
				teaser, longSummary, highlights = buildFallbacks(clean)
			} else {
				if strings.TrimSpace(res.Title) != "" {
					title = res.Title
				}
				teaser, longSummary, highlights = res.Teaser, res.Long, res.Highlights
			}
		}
	}

	// Content entirely absent: the degenerate placeholder keeps the card
	// present rather than dropping the sender silently.
	if teaser == "" && longSummary == "" {
		teaser = "Sender: " + entry.Sender
		longSummary = teaser
	}
	if len(highlights) == 0 {
		highlights = deriveHighlights(teaser, longSummary, 4)
	}

	return domain.DigestCard{
		ID:          id,
		Title:       title,
		Topic:       topicFor(entry.Name + " " + entry.Sender),
		Minutes:     readingMinutes(teaser + " " + longSummary),
		Tag:         u.labelTag(ctx, title, clean),
		Description: teaser,
		Teaser:      teaser,
		LongSummary: longSummary,
		Highlights:  highlights,
		Sender:      entry.Sender,
		Date:        fetched.Date,
		IsToday:     u.isToday(fetched.Date),
	}
}

// labelTag asks the labeling service for a 1-2 word tag; without a service,
// or when it fails, the proper-noun heuristic answers instead.
func (u *newsletterUsecase) labelTag(ctx context.Context, title, body string) string {
	if u.aiService != nil {
		if label, err := u.aiService.LabelTopic(ctx, title, body); err == nil && label != "" {
			return label
		}
	}
	return fallbackLabel(title, body)
}

func (u *newsletterUsecase) isToday(ts time.Time) bool {
	if ts.Equal(domain.Epoch()) {
		return false
	}
	now := time.Now().In(u.location)
	local := ts.In(u.location)
	return now.Year() == local.Year() && now.YearDay() == local.YearDay()
}

// readingMinutes estimates reading time at 180 words per minute, never less
// than one minute.
func readingMinutes(text string) int {
	words := len(strings.Fields(text))
	minutes := words / 180
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
