package notifications

import (
	"context"
	"time"
)

// RepositoryInterface defines the interface for the sent-notification log
type RepositoryInterface interface {
	// RecordSent inserts the notification record and reports whether this
	// call was the first for its dedup tuple.
	RecordSent(ctx context.Context, n *SentNotification) (bool, error)
}

// Cache is the subset of the redis client the fast-path guard needs
type Cache interface {
	SetIfAbsent(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}
