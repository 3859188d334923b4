package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"newsly-backend/internal/digest/usecase"

	"github.com/robfig/cron/v3"
)

// DigestScheduler fires one digest send per subscriber timezone at the
// configured local hour. It owns its cron instance with an explicit
// Start/Stop lifecycle; Refresh rebuilds the job set after subscription
// changes.
type DigestScheduler struct {
	digestUsecase usecase.DigestUsecase
	hour          int

	mu   sync.Mutex
	cron *cron.Cron
}

func NewDigestScheduler(digestUsecase usecase.DigestUsecase, hour int) *DigestScheduler {
	return &DigestScheduler{
		digestUsecase: digestUsecase,
		hour:          hour,
	}
}

// Start registers the per-timezone jobs and begins scheduling.
func (s *DigestScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload()
	log.Printf("[DigestScheduler] started, daily send at %02d:00 local time", s.hour)
}

// Refresh rebuilds the job set, picking up timezones that gained or lost
// subscribers.
func (s *DigestScheduler) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload()
}

// Stop halts scheduling. Running jobs finish.
func (s *DigestScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
	log.Println("[DigestScheduler] stopped")
}

// reload replaces the cron instance. Callers hold the mutex.
func (s *DigestScheduler) reload() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = cron.New()

	timezones, err := s.digestUsecase.DistinctTimezones()
	if err != nil {
		log.Printf("[DigestScheduler] failed to load timezones: %v", err)
	}

	for _, tz := range timezones {
		tz := tz
		spec := fmt.Sprintf("CRON_TZ=%s 0 %d * * *", tz, s.hour)
		if _, err := s.cron.AddFunc(spec, func() {
			sent, err := s.digestUsecase.SendForTimezone(context.Background(), tz)
			if err != nil {
				log.Printf("[DigestScheduler] %s: digest send finished with errors (%d sent): %v", tz, sent, err)
				return
			}
			log.Printf("[DigestScheduler] %s: digest sent to %d subscribers", tz, sent)
		}); err != nil {
			log.Printf("[DigestScheduler] invalid schedule for %s: %v", tz, err)
		}
	}

	s.cron.Start()
}
