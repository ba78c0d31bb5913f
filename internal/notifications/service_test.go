package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) RecordSent(ctx context.Context, n *SentNotification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

type mockDedupCache struct {
	mock.Mock
}

func (m *mockDedupCache) SetIfAbsent(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func TestShouldSend_FirstClaimWins(t *testing.T) {
	repo := new(mockNotificationRepository)
	cache := new(mockDedupCache)
	svc := NewService(repo, cache)

	sponsorID := uuid.New()
	childID := uuid.New()

	cache.On("SetIfAbsent", mock.Anything, dedupKey(sponsorID, childID, TypeAchievement, "first-steps"), 1, dedupKeyTTL).
		Return(true, nil)
	repo.On("RecordSent", mock.Anything, mock.MatchedBy(func(n *SentNotification) bool {
		return n.SponsorID == sponsorID && n.ChildID == childID &&
			n.NotificationType == TypeAchievement && n.EventKey == "first-steps"
	})).Return(true, nil)

	send, err := svc.ShouldSend(context.Background(), sponsorID, childID, TypeAchievement, "first-steps")

	assert.NoError(t, err)
	assert.True(t, send)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestShouldSend_CacheHitShortCircuits(t *testing.T) {
	repo := new(mockNotificationRepository)
	cache := new(mockDedupCache)
	svc := NewService(repo, cache)

	cache.On("SetIfAbsent", mock.Anything, mock.Anything, 1, dedupKeyTTL).Return(false, nil)

	send, err := svc.ShouldSend(context.Background(), uuid.New(), uuid.New(), TypeReport, "2026-q1")

	assert.NoError(t, err)
	assert.False(t, send)
	repo.AssertNotCalled(t, "RecordSent", mock.Anything, mock.Anything)
}

func TestShouldSend_TableBlocksDuplicateAfterCacheExpiry(t *testing.T) {
	repo := new(mockNotificationRepository)
	cache := new(mockDedupCache)
	svc := NewService(repo, cache)

	cache.On("SetIfAbsent", mock.Anything, mock.Anything, 1, dedupKeyTTL).Return(true, nil)
	repo.On("RecordSent", mock.Anything, mock.Anything).Return(false, nil)

	send, err := svc.ShouldSend(context.Background(), uuid.New(), uuid.New(), TypeEvent, "birthday-2026")

	assert.NoError(t, err)
	assert.False(t, send)
}

func TestShouldSend_CacheOutageFallsThroughToTable(t *testing.T) {
	repo := new(mockNotificationRepository)
	cache := new(mockDedupCache)
	svc := NewService(repo, cache)

	cache.On("SetIfAbsent", mock.Anything, mock.Anything, 1, dedupKeyTTL).
		Return(false, errors.New("connection refused"))
	repo.On("RecordSent", mock.Anything, mock.Anything).Return(true, nil)

	send, err := svc.ShouldSend(context.Background(), uuid.New(), uuid.New(), TypeAchievement, "graduation")

	assert.NoError(t, err)
	assert.True(t, send)
	repo.AssertExpectations(t)
}
