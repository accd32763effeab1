// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"rss_digest/internal/model"
)

// Storage is the interface for all persistence operations.
type Storage interface {
	MarkSeen(ctx context.Context, id string) error
	IsSeen(ctx context.Context, id string) (bool, error)

	AddDigestItem(ctx context.Context, item model.DigestItem) error
	DigestItems(ctx context.Context, dateKey string) ([]model.DigestItem, error)

	MarkDigestSent(ctx context.Context, dateKey string) error
	IsDigestSent(ctx context.Context, dateKey string) (bool, error)
	LastDigestSent(ctx context.Context) (*model.DigestSentMarker, error)

	Close() error
}
