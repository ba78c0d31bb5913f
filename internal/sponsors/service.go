package sponsors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

const flagStatusTTL = 5 * time.Minute

// Service handles sponsor business logic
type Service struct {
	repo  RepositoryInterface
	cache Cache
}

// NewService creates a new sponsor service
func NewService(repo RepositoryInterface, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func flagStatusKey(sponsorID uuid.UUID) string {
	return fmt.Sprintf("sponsor:flag:%s", sponsorID)
}

// GetFlagStatus returns the sponsor's enforcement flag state. Reads go
// through a short-TTL cache; case actions invalidate it.
func (s *Service) GetFlagStatus(ctx context.Context, sponsorID uuid.UUID) (*FlagStatus, error) {
	key := flagStatusKey(sponsorID)

	if s.cache != nil {
		if cached, err := s.cache.GetString(ctx, key); err == nil && cached != "" {
			var status FlagStatus
			if err := json.Unmarshal([]byte(cached), &status); err == nil {
				return &status, nil
			}
		}
	}

	sponsor, err := s.repo.GetSponsorByID(ctx, sponsorID)
	if err != nil {
		return nil, err
	}
	if sponsor == nil {
		return nil, common.NewNotFoundError("sponsor not found")
	}

	status := &FlagStatus{
		SponsorID:  sponsor.ID,
		Flagged:    sponsor.Flagged,
		FlagReason: sponsor.FlagReason,
		FlaggedAt:  sponsor.FlaggedAt,
	}

	if s.cache != nil {
		if data, err := json.Marshal(status); err == nil {
			if err := s.cache.SetWithExpiration(ctx, key, data, flagStatusTTL); err != nil {
				logger.WithContext(ctx).Warn("failed to cache flag status",
					zap.String("sponsor_id", sponsorID.String()),
					zap.Error(err))
			}
		}
	}

	return status, nil
}

// InvalidateFlagStatus drops the cached flag status after a case action
// changes it. Implements the cache hook the case and appeal services use.
func (s *Service) InvalidateFlagStatus(ctx context.Context, sponsorID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, flagStatusKey(sponsorID)); err != nil {
		logger.WithContext(ctx).Warn("failed to invalidate flag status cache",
			zap.String("sponsor_id", sponsorID.String()),
			zap.Error(err))
	}
}
