package sponsors

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for sponsor storage
type RepositoryInterface interface {
	GetSponsorByID(ctx context.Context, id uuid.UUID) (*Sponsor, error)
}

// Cache is the subset of the redis client the flag status cache needs
type Cache interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}
