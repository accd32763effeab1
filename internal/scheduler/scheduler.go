// Package scheduler runs the polling loop: ingest every feed, then send the
// daily digest when it is due.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"rss_digest/internal/config"
	"rss_digest/internal/digest"
	"rss_digest/internal/fetcher"
	"rss_digest/internal/filter"
	"rss_digest/internal/storage"
)

// Scheduler periodically checks feeds and sends the daily digest.
type Scheduler struct {
	store      storage.Storage
	fetcher    *fetcher.Fetcher
	notifier   digest.Notifier
	digest     *digest.Sender
	rules      filter.Rules
	schedule   digest.Schedule
	feeds      []string
	maxEntries int
	log        *slog.Logger
	tick       time.Duration
	now        func() time.Time
}

// New creates a Scheduler with the default HTTP client.
func New(cfg *config.Config, store storage.Storage, notifier digest.Notifier, log *slog.Logger) *Scheduler {
	return NewWithFetcher(cfg, store, fetcher.New(http.DefaultClient), notifier, log)
}

// NewWithFetcher creates a Scheduler with a custom fetcher (useful for testing).
func NewWithFetcher(cfg *config.Config, store storage.Storage, f *fetcher.Fetcher, notifier digest.Notifier, log *slog.Logger) *Scheduler {
	schedule := digest.Schedule{
		Location: cfg.Location(),
		Hour:     cfg.DigestHour,
		Minute:   cfg.DigestMinute,
	}
	return &Scheduler{
		store:      store,
		fetcher:    f,
		notifier:   notifier,
		digest:     digest.NewSender(store, notifier, schedule, cfg.DigestMaxItems, log),
		rules:      filter.NewRules(cfg.KeywordsAny, cfg.KeywordsDest, cfg.KeywordsOrigin),
		schedule:   schedule,
		feeds:      cfg.Feeds,
		maxEntries: cfg.MaxEntriesPerFeed,
		log:        log,
		tick:       cfg.PollInterval,
		now:        time.Now,
	}
}

// SetTickInterval overrides the configured poll interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// Announce sends the one-time startup notice.
func (s *Scheduler) Announce(ctx context.Context) error {
	if err := s.notifier.Send(ctx, digest.OnlineNotice(s.schedule, len(s.feeds))); err != nil {
		return fmt.Errorf("send online notice: %w", err)
	}
	return nil
}

// Run runs a cycle, sleeps for the poll interval and repeats, blocking until
// ctx is cancelled. Cycle failures are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.runCycle(ctx)
			timer.Reset(s.tick)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("cycle panicked", "panic", r)
		}
	}()

	if err := s.cycle(ctx); err != nil {
		s.log.Error("cycle failed", "error", err)
	}
}

func (s *Scheduler) cycle(ctx context.Context) error {
	stats, err := s.Ingest(ctx, s.now())
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	s.log.Info("check complete",
		"processed", stats.Processed,
		"relevant", stats.Relevant,
		"failed_feeds", stats.FailedFeeds,
	)

	if _, err := s.digest.SendIfDue(ctx, s.now()); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}
