package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	digestdomain "newsly-backend/internal/digest/domain"
	"newsly-backend/internal/newsletter/domain"
	"newsly-backend/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNewsletterUsecase serves scripted cards per mode.
type stubNewsletterUsecase struct {
	normalCards []domain.DigestCard
	fastCards   []domain.DigestCard
}

func (s *stubNewsletterUsecase) ScanCandidates(ctx context.Context) ([]domain.SelectionEntry, error) {
	return nil, nil
}
func (s *stubNewsletterUsecase) SaveSelection(entries []domain.SelectionEntry) error { return nil }
func (s *stubNewsletterUsecase) Selection() ([]domain.SelectionEntry, error)         { return nil, nil }
func (s *stubNewsletterUsecase) SetAIService(svc ai.SummarizerService)               {}
func (s *stubNewsletterUsecase) BuildDigest(ctx context.Context, fast bool) []domain.DigestCard {
	if fast {
		return s.fastCards
	}
	return s.normalCards
}

// memorySubscriberRepo is an in-memory SubscriberRepository.
type memorySubscriberRepo struct {
	subscribers []*digestdomain.Subscriber
}

func (r *memorySubscriberRepo) Upsert(s *digestdomain.Subscriber) error {
	for i, existing := range r.subscribers {
		if existing.Email == s.Email {
			r.subscribers[i] = s
			return nil
		}
	}
	r.subscribers = append(r.subscribers, s)
	return nil
}

func (r *memorySubscriberRepo) FindByEmail(email string) (*digestdomain.Subscriber, error) {
	for _, s := range r.subscribers {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memorySubscriberRepo) FindAll() ([]*digestdomain.Subscriber, error) {
	return r.subscribers, nil
}

func (r *memorySubscriberRepo) FindByTimezone(tz string) ([]*digestdomain.Subscriber, error) {
	var out []*digestdomain.Subscriber
	for _, s := range r.subscribers {
		if s.Timezone == tz {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memorySubscriberRepo) DistinctTimezones() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range r.subscribers {
		if !seen[s.Timezone] {
			seen[s.Timezone] = true
			out = append(out, s.Timezone)
		}
	}
	return out, nil
}

func (r *memorySubscriberRepo) Delete(email string) error {
	for i, s := range r.subscribers {
		if s.Email == email {
			r.subscribers = append(r.subscribers[:i], r.subscribers[i+1:]...)
			return nil
		}
	}
	return nil
}

// sendRecorder captures outgoing digest emails.
type sendRecorder struct {
	sent    []string
	failFor map[string]error
}

func (m *sendRecorder) ScanCandidates(ctx context.Context, lookbackDays int) ([]domain.SenderCandidate, error) {
	return nil, nil
}

func (m *sendRecorder) FetchLatestFromSender(ctx context.Context, sender string, lookbackDays int) (*domain.FetchedContent, error) {
	return &domain.FetchedContent{Date: domain.Epoch()}, nil
}

func (m *sendRecorder) Send(ctx context.Context, to, subject, html, text string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, to)
	return nil
}

func cardsNamed(names ...string) []domain.DigestCard {
	now := time.Now().UTC()
	var out []domain.DigestCard
	for i, n := range names {
		out = append(out, domain.DigestCard{
			Title:       n,
			Sender:      strings.ToLower(n) + "@x.com",
			Teaser:      "Teaser for " + n,
			LongSummary: "Long summary for " + n,
			Date:        now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}

func TestSendNowDeliversToAllSubscribers(t *testing.T) {
	repo := &memorySubscriberRepo{subscribers: []*digestdomain.Subscriber{
		{Email: "one@x.com", Timezone: "UTC"},
		{Email: "two@x.com", Timezone: "Europe/Istanbul"},
	}}
	recorder := &sendRecorder{}
	uc := NewDigestUsecase(&stubNewsletterUsecase{normalCards: cardsNamed("Alpha")}, repo, recorder, "UTC")

	sent, err := uc.SendNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.ElementsMatch(t, []string{"one@x.com", "two@x.com"}, recorder.sent)
}

func TestSendNowSkipsWhenNoCards(t *testing.T) {
	repo := &memorySubscriberRepo{subscribers: []*digestdomain.Subscriber{{Email: "one@x.com", Timezone: "UTC"}}}
	recorder := &sendRecorder{}
	uc := NewDigestUsecase(&stubNewsletterUsecase{}, repo, recorder, "UTC")

	sent, err := uc.SendNow(context.Background())

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, recorder.sent)
}

func TestSendNowRetriesFastWhenNormalBuildEmpty(t *testing.T) {
	repo := &memorySubscriberRepo{subscribers: []*digestdomain.Subscriber{{Email: "one@x.com", Timezone: "UTC"}}}
	recorder := &sendRecorder{}
	uc := NewDigestUsecase(&stubNewsletterUsecase{fastCards: cardsNamed("Fallback")}, repo, recorder, "UTC")

	sent, err := uc.SendNow(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestSendNowSurfacesPartialFailure(t *testing.T) {
	repo := &memorySubscriberRepo{subscribers: []*digestdomain.Subscriber{
		{Email: "good@x.com", Timezone: "UTC"},
		{Email: "bad@x.com", Timezone: "UTC"},
	}}
	recorder := &sendRecorder{failFor: map[string]error{"bad@x.com": errors.New("mailbox full")}}
	uc := NewDigestUsecase(&stubNewsletterUsecase{normalCards: cardsNamed("Alpha")}, repo, recorder, "UTC")

	sent, err := uc.SendNow(context.Background())

	assert.Equal(t, 1, sent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad@x.com")
}

func TestSendForTimezoneFiltersSubscribers(t *testing.T) {
	repo := &memorySubscriberRepo{subscribers: []*digestdomain.Subscriber{
		{Email: "ist@x.com", Timezone: "Europe/Istanbul"},
		{Email: "utc@x.com", Timezone: "UTC"},
	}}
	recorder := &sendRecorder{}
	uc := NewDigestUsecase(&stubNewsletterUsecase{normalCards: cardsNamed("Alpha")}, repo, recorder, "UTC")

	sent, err := uc.SendForTimezone(context.Background(), "Europe/Istanbul")

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"ist@x.com"}, recorder.sent)
}

func TestPreviewCapsEmailCards(t *testing.T) {
	uc := NewDigestUsecase(&stubNewsletterUsecase{
		normalCards: cardsNamed("A", "B", "C", "D", "E", "F", "G"),
	}, &memorySubscriberRepo{}, &sendRecorder{}, "UTC")

	html, cards := uc.Preview(context.Background())

	assert.Len(t, cards, maxEmailCards)
	assert.Contains(t, html, "Long summary for A")
	assert.NotContains(t, html, "Long summary for G")
}

func TestSubscribeValidatesTimezone(t *testing.T) {
	repo := &memorySubscriberRepo{}
	uc := NewDigestUsecase(&stubNewsletterUsecase{}, repo, &sendRecorder{}, "Europe/Istanbul")

	require.NoError(t, uc.Subscribe("one@x.com", "UTC"))
	assert.Error(t, uc.Subscribe("two@x.com", "Mars/Olympus"))

	// Empty timezone falls back to the configured default
	require.NoError(t, uc.Subscribe("three@x.com", ""))
	sub, err := repo.FindByEmail("three@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Istanbul", sub.Timezone)
}
