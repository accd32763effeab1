package scheduler

import (
	"context"
	"fmt"
	"time"

	"rss_digest/internal/fetcher"
	"rss_digest/internal/model"
)

const defaultTitle = "Promotion"

// Stats summarizes one ingestion pass.
type Stats struct {
	// Processed counts previously unseen entries, relevant or not.
	Processed int
	// Relevant counts entries queued for the digest.
	Relevant    int
	FailedFeeds int
}

// Ingest fetches every configured feed in order and queues new relevant
// entries under the day key of now. A feed that cannot be fetched is logged
// and skipped; a store failure aborts the pass.
func (s *Scheduler) Ingest(ctx context.Context, now time.Time) (Stats, error) {
	var stats Stats
	dateKey := s.schedule.DayKey(now)

	for _, feedURL := range s.feeds {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		feed, err := s.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			s.log.Warn("fetch feed", "url", feedURL, "error", err)
			stats.FailedFeeds++
			continue
		}

		entries := fetcher.Entries(feed, feedURL, s.maxEntries)
		s.log.Debug("fetched feed", "url", feedURL, "entries", len(entries))

		for _, e := range entries {
			queued, isNew, err := s.ingestEntry(ctx, dateKey, e)
			if err != nil {
				return stats, fmt.Errorf("feed %s: %w", feedURL, err)
			}
			if !isNew {
				continue
			}
			stats.Processed++
			if queued {
				stats.Relevant++
			}
		}
	}
	return stats, nil
}

// ingestEntry marks e seen before classifying it, so an entry is never
// evaluated twice even if the process dies mid-cycle.
func (s *Scheduler) ingestEntry(ctx context.Context, dateKey string, e model.Entry) (queued, isNew bool, err error) {
	seen, err := s.store.IsSeen(ctx, e.ID)
	if err != nil {
		return false, false, err
	}
	if seen {
		return false, false, nil
	}

	if err := s.store.MarkSeen(ctx, e.ID); err != nil {
		return false, true, err
	}

	if !s.rules.Relevant(e) {
		return false, true, nil
	}

	title := e.Title
	if title == "" {
		title = defaultTitle
	}
	err = s.store.AddDigestItem(ctx, model.DigestItem{
		EntryID: e.ID,
		DateKey: dateKey,
		Title:   title,
		Link:    e.Link,
		Source:  e.Source,
	})
	if err != nil {
		return false, true, err
	}
	s.log.Debug("queued for digest", "date_key", dateKey, "title", title, "source", e.Source)
	return true, true, nil
}
