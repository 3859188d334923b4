package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	digestdomain "newsly-backend/internal/digest/domain"
	"newsly-backend/internal/digest/repository"
	"newsly-backend/internal/newsletter/domain"
	newsletterusecase "newsly-backend/internal/newsletter/usecase"

	"github.com/google/uuid"
)

// Cards included in a digest email. The interactive feed shows more; the
// email keeps only the freshest few.
const maxEmailCards = 5

// DigestUsecase builds and delivers the scheduled digest email.
type DigestUsecase interface {
	// Preview renders the digest without sending it.
	Preview(ctx context.Context) (string, []domain.DigestCard)

	// SendNow builds and sends the digest to every subscriber, returning the
	// number of successful deliveries. Send failures are surfaced.
	SendNow(ctx context.Context) (int, error)

	// SendForTimezone sends the digest to the subscribers of one timezone.
	SendForTimezone(ctx context.Context, tz string) (int, error)

	Subscribe(email, timezone string) error
	Unsubscribe(email string) error
	Subscribers() ([]*digestdomain.Subscriber, error)
	DistinctTimezones() ([]string, error)
}

type digestUsecase struct {
	newsletterUsecase newsletterusecase.NewsletterUsecase
	subscriberRepo    repository.SubscriberRepository
	mailbox           domain.Mailbox
	defaultTimezone   string
}

func NewDigestUsecase(
	newsletterUsecase newsletterusecase.NewsletterUsecase,
	subscriberRepo repository.SubscriberRepository,
	mailbox domain.Mailbox,
	defaultTimezone string,
) DigestUsecase {
	return &digestUsecase{
		newsletterUsecase: newsletterUsecase,
		subscriberRepo:    subscriberRepo,
		mailbox:           mailbox,
		defaultTimezone:   defaultTimezone,
	}
}

// buildCards runs a normal-mode build, retrying in fast mode when it comes
// back empty, and keeps the freshest cards for the email.
func (u *digestUsecase) buildCards(ctx context.Context) []domain.DigestCard {
	cards := u.newsletterUsecase.BuildDigest(ctx, false)
	if len(cards) == 0 {
		cards = u.newsletterUsecase.BuildDigest(ctx, true)
	}
	if len(cards) > maxEmailCards {
		cards = cards[:maxEmailCards]
	}
	return cards
}

func (u *digestUsecase) Preview(ctx context.Context) (string, []domain.DigestCard) {
	cards := u.buildCards(ctx)
	return RenderHTML(cards, time.Now()), cards
}

func (u *digestUsecase) SendNow(ctx context.Context) (int, error) {
	subscribers, err := u.subscriberRepo.FindAll()
	if err != nil {
		return 0, fmt.Errorf("failed to load subscribers: %w", err)
	}
	return u.send(ctx, subscribers)
}

func (u *digestUsecase) SendForTimezone(ctx context.Context, tz string) (int, error) {
	subscribers, err := u.subscriberRepo.FindByTimezone(tz)
	if err != nil {
		return 0, fmt.Errorf("failed to load subscribers for %s: %w", tz, err)
	}
	return u.send(ctx, subscribers)
}

func (u *digestUsecase) send(ctx context.Context, subscribers []*digestdomain.Subscriber) (int, error) {
	if len(subscribers) == 0 {
		return 0, nil
	}

	runID := uuid.New().String()
	cards := u.buildCards(ctx)
	if len(cards) == 0 {
		log.Printf("[Digest] run %s: no cards, skipping send", runID)
		return 0, nil
	}

	now := time.Now()
	htmlBody := RenderHTML(cards, now)
	textBody := HTMLToText(htmlBody)
	subject := fmt.Sprintf("Your Daily Digest - %s", now.Format("Jan 2, 2006"))

	sent := 0
	var sendErrs []error
	for _, sub := range subscribers {
		if err := u.mailbox.Send(ctx, sub.Email, subject, htmlBody, textBody); err != nil {
			log.Printf("[Digest] run %s: send to %s failed: %v", runID, sub.Email, err)
			sendErrs = append(sendErrs, fmt.Errorf("send to %s: %w", sub.Email, err))
			continue
		}
		sent++
	}

	log.Printf("[Digest] run %s: %d cards, %d/%d deliveries", runID, len(cards), sent, len(subscribers))
	return sent, errors.Join(sendErrs...)
}

func (u *digestUsecase) Subscribe(email, timezone string) error {
	if timezone == "" {
		timezone = u.defaultTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("unknown timezone %q", timezone)
	}
	return u.subscriberRepo.Upsert(&digestdomain.Subscriber{Email: email, Timezone: timezone})
}

func (u *digestUsecase) Unsubscribe(email string) error {
	return u.subscriberRepo.Delete(email)
}

func (u *digestUsecase) Subscribers() ([]*digestdomain.Subscriber, error) {
	return u.subscriberRepo.FindAll()
}

func (u *digestUsecase) DistinctTimezones() ([]string, error) {
	return u.subscriberRepo.DistinctTimezones()
}
