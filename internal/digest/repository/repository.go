package repository

import "newsly-backend/internal/digest/domain"

// SubscriberRepository persists digest subscribers.
type SubscriberRepository interface {
	Upsert(subscriber *domain.Subscriber) error
	FindByEmail(email string) (*domain.Subscriber, error)
	FindAll() ([]*domain.Subscriber, error)
	FindByTimezone(tz string) ([]*domain.Subscriber, error)
	DistinctTimezones() ([]string, error)
	Delete(email string) error
}
