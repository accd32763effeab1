package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rss_digest/internal/model"
)

// Notifier delivers a formatted message. It returns an error when delivery
// did not succeed.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Store is the subset of persistence the digest needs.
type Store interface {
	DigestItems(ctx context.Context, dateKey string) ([]model.DigestItem, error)
	IsDigestSent(ctx context.Context, dateKey string) (bool, error)
	MarkDigestSent(ctx context.Context, dateKey string) error
}

// Sender sends at most one successful digest per day key.
type Sender struct {
	store    Store
	notifier Notifier
	schedule Schedule
	maxItems int
	log      *slog.Logger
}

// NewSender creates a Sender.
func NewSender(store Store, notifier Notifier, schedule Schedule, maxItems int, log *slog.Logger) *Sender {
	return &Sender{
		store:    store,
		notifier: notifier,
		schedule: schedule,
		maxItems: maxItems,
		log:      log,
	}
}

// SendIfDue sends today's digest when the send time has been reached and it
// has not been sent yet. It reports whether a digest was delivered.
func (s *Sender) SendIfDue(ctx context.Context, now time.Time) (bool, error) {
	if !s.schedule.Reached(now) {
		return false, nil
	}

	dateKey := s.schedule.DayKey(now)
	sent, err := s.store.IsDigestSent(ctx, dateKey)
	if err != nil {
		return false, err
	}
	if !s.schedule.Due(now, sent) {
		return false, nil
	}

	s.log.Info("digest time reached, sending", "date_key", dateKey)
	if err := s.Send(ctx, dateKey); err != nil {
		return false, err
	}
	return true, nil
}

// Send composes and delivers the digest for dateKey, then marks it sent.
// The marker is written only after a successful delivery.
func (s *Sender) Send(ctx context.Context, dateKey string) error {
	items, err := s.store.DigestItems(ctx, dateKey)
	if err != nil {
		return err
	}

	msg := Compose(dateKey, items, s.maxItems)
	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("deliver digest %s: %w", dateKey, err)
	}

	if err := s.store.MarkDigestSent(ctx, dateKey); err != nil {
		return err
	}

	s.log.Info("digest sent", "date_key", dateKey, "items", len(items))
	return nil
}
