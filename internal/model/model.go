// Package model defines the domain types used across the application.
package model

import "time"

// Entry is a single item pulled from a feed. It is never persisted as-is;
// only the records derived from it are.
type Entry struct {
	ID      string
	Title   string
	Summary string
	Link    string
	Source  string
}

// DigestItem is a relevant entry queued for the digest of one day.
type DigestItem struct {
	EntryID string
	DateKey string
	Title   string
	Link    string
	Source  string
	AddedAt time.Time
}

// DigestSentMarker records that the digest for DateKey was delivered.
type DigestSentMarker struct {
	DateKey string
	SentAt  time.Time
}
