package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

const dedupKeyTTL = 48 * time.Hour

// Service is the idempotent already-sent guard for sponsor notifications
type Service struct {
	repo  RepositoryInterface
	cache Cache
}

// NewService creates a new notification service
func NewService(repo RepositoryInterface, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func dedupKey(sponsorID, childID uuid.UUID, notifType NotificationType, eventKey string) string {
	return fmt.Sprintf("notif:sent:%s:%s:%s:%s", sponsorID, childID, notifType, eventKey)
}

// ShouldSend claims the (sponsor, child, type, event) tuple and reports
// whether the caller should deliver the notification. Redis SETNX is the fast
// path; the unique-indexed table is the durable record, so a cache outage
// degrades to database-only dedup rather than duplicate sends.
func (s *Service) ShouldSend(ctx context.Context, sponsorID, childID uuid.UUID, notifType NotificationType, eventKey string) (bool, error) {
	if s.cache != nil {
		key := dedupKey(sponsorID, childID, notifType, eventKey)
		set, err := s.cache.SetIfAbsent(ctx, key, 1, dedupKeyTTL)
		if err != nil {
			logger.WithContext(ctx).Warn("notification dedup cache unavailable",
				zap.String("sponsor_id", sponsorID.String()),
				zap.Error(err))
		} else if !set {
			return false, nil
		}
	}

	first, err := s.repo.RecordSent(ctx, &SentNotification{
		ID:               uuid.New(),
		SponsorID:        sponsorID,
		ChildID:          childID,
		NotificationType: notifType,
		EventKey:         eventKey,
		SentAt:           time.Now(),
	})
	if err != nil {
		return false, err
	}

	return first, nil
}
