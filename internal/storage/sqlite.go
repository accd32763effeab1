package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"rss_digest/internal/model"
	"rss_digest/migrations"
)

// Fixed width so that lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNoDigestSent is returned by LastDigestSent when no digest was ever sent.
var ErrNoDigestSent = errors.New("no digest sent yet")

// SQLite implements Storage backed by a SQLite database.
// Every write is a single autocommitted statement.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer; also keeps ":memory:" databases on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set synchronous: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// MarkSeen records that an entry has been observed. Marking an already seen
// entry is a no-op.
func (s *SQLite) MarkSeen(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen (id, first_seen_at) VALUES (?, ?)`,
		id, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// IsSeen checks whether an entry has already been observed.
func (s *SQLite) IsSeen(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seen WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return count > 0, nil
}

// AddDigestItem queues an entry for the digest of item.DateKey. An entry ID
// already queued under any date key is ignored. AddedAt is set by the store.
func (s *SQLite) AddDigestItem(ctx context.Context, item model.DigestItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO digest_items (entry_id, date_key, title, link, source, added_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.EntryID, item.DateKey, item.Title, item.Link, item.Source, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("add digest item: %w", err)
	}
	return nil
}

// DigestItems returns the items queued for dateKey in insertion order.
func (s *SQLite) DigestItems(ctx context.Context, dateKey string) ([]model.DigestItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, date_key, title, link, source, added_at
		 FROM digest_items WHERE date_key = ? ORDER BY added_at, rowid`, dateKey,
	)
	if err != nil {
		return nil, fmt.Errorf("query digest items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.DigestItem
	for rows.Next() {
		var it model.DigestItem
		var added string
		if err := rows.Scan(&it.EntryID, &it.DateKey, &it.Title, &it.Link, &it.Source, &added); err != nil {
			return nil, fmt.Errorf("scan digest item: %w", err)
		}
		it.AddedAt, _ = time.Parse(timeLayout, added)
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkDigestSent records that the digest for dateKey was delivered,
// overwriting the timestamp of any earlier marker.
func (s *SQLite) MarkDigestSent(ctx context.Context, dateKey string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO digest_sent (date_key, sent_at) VALUES (?, ?)`,
		dateKey, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("mark digest sent: %w", err)
	}
	return nil
}

// IsDigestSent checks whether the digest for dateKey was already delivered.
func (s *SQLite) IsDigestSent(ctx context.Context, dateKey string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM digest_sent WHERE date_key = ?`, dateKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check digest sent: %w", err)
	}
	return count > 0, nil
}

// LastDigestSent returns the most recent sent marker, or ErrNoDigestSent.
func (s *SQLite) LastDigestSent(ctx context.Context) (*model.DigestSentMarker, error) {
	var m model.DigestSentMarker
	var sent string
	err := s.db.QueryRowContext(ctx,
		`SELECT date_key, sent_at FROM digest_sent ORDER BY date_key DESC LIMIT 1`,
	).Scan(&m.DateKey, &sent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDigestSent
	}
	if err != nil {
		return nil, fmt.Errorf("last digest sent: %w", err)
	}
	m.SentAt, _ = time.Parse(timeLayout, sent)
	return &m, nil
}
