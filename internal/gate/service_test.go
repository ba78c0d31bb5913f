package gate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tumaini/sponsorship/internal/cases"
)

type mockGateRepository struct {
	mock.Mock
}

func (m *mockGateRepository) GetLatestCase(ctx context.Context, sponsorID uuid.UUID) (*cases.FraudCase, error) {
	args := m.Called(ctx, sponsorID)
	fc, _ := args.Get(0).(*cases.FraudCase)
	return fc, args.Error(1)
}

func (m *mockGateRepository) SumMonthSuccessful(ctx context.Context, sponsorID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, sponsorID)
	sum, _ := args.Get(0).(decimal.Decimal)
	return sum, args.Error(1)
}

func TestEvaluateNoCase(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()

	repo.On("GetLatestCase", ctx, sponsorID).Return(nil, nil).Once()

	decision, err := service.Evaluate(ctx, sponsorID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, StatusNormal, decision.Status)
	assert.Nil(t, decision.MonthlyLimit)
}

func TestEvaluateClearedCaseFallsThroughToNormal(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()

	repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
		ID:        uuid.New(),
		SponsorID: sponsorID,
		Status:    cases.StatusCleared,
	}, nil).Once()

	decision, err := service.Evaluate(ctx, sponsorID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, StatusNormal, decision.Status)
	repo.AssertNotCalled(t, "SumMonthSuccessful", mock.Anything, mock.Anything)
}

func TestEvaluateBlockedAndFrozen(t *testing.T) {
	tests := []struct {
		caseStatus cases.CaseStatus
		gateStatus GateStatus
	}{
		{cases.StatusBlocked, StatusBlocked},
		{cases.StatusFrozen, StatusFrozen},
	}

	for _, tt := range tests {
		t.Run(string(tt.caseStatus), func(t *testing.T) {
			ctx := context.Background()
			repo := new(mockGateRepository)
			service := NewService(repo, decimal.Zero)
			sponsorID := uuid.New()

			repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
				ID:        uuid.New(),
				SponsorID: sponsorID,
				Status:    tt.caseStatus,
			}, nil).Once()

			decision, err := service.Evaluate(ctx, sponsorID)
			require.NoError(t, err)
			assert.False(t, decision.Allowed)
			assert.Equal(t, tt.gateStatus, decision.Status)
			require.NotNil(t, decision.Remaining)
			assert.True(t, decision.Remaining.IsZero())
			assert.NotEmpty(t, decision.Message)
		})
	}
}

func TestEvaluateUnderReviewIsInformational(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()

	repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
		ID:        uuid.New(),
		SponsorID: sponsorID,
		Status:    cases.StatusUnderReview,
	}, nil).Once()

	decision, err := service.Evaluate(ctx, sponsorID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, StatusUnderReview, decision.Status)
	assert.Nil(t, decision.MonthlyLimit)
}

func TestEvaluateRestrictedComputesRemaining(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()
	limit := decimal.RequireFromString("3000.00")

	repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
		ID:                   uuid.New(),
		SponsorID:            sponsorID,
		Status:               cases.StatusRestricted,
		MonthlyDonationLimit: &limit,
	}, nil).Once()
	repo.On("SumMonthSuccessful", ctx, sponsorID).Return(decimal.RequireFromString("2800.00"), nil).Once()

	decision, err := service.Evaluate(ctx, sponsorID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, StatusRestricted, decision.Status)
	require.NotNil(t, decision.Remaining)
	assert.True(t, decision.Remaining.Equal(decimal.RequireFromString("200.00")))
}

func TestEvaluateRestrictedLimitReached(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()
	limit := decimal.RequireFromString("3000.00")

	repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
		ID:                   uuid.New(),
		SponsorID:            sponsorID,
		Status:               cases.StatusRestricted,
		MonthlyDonationLimit: &limit,
	}, nil).Once()
	repo.On("SumMonthSuccessful", ctx, sponsorID).Return(decimal.RequireFromString("3100.00"), nil).Once()

	decision, err := service.Evaluate(ctx, sponsorID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	require.NotNil(t, decision.Remaining)
	assert.True(t, decision.Remaining.IsZero())
}

func TestEvaluateRestrictedDefaultsLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()

	repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
		ID:        uuid.New(),
		SponsorID: sponsorID,
		Status:    cases.StatusRestricted,
	}, nil).Once()
	repo.On("SumMonthSuccessful", ctx, sponsorID).Return(decimal.Zero, nil).Once()

	decision, err := service.Evaluate(ctx, sponsorID)
	require.NoError(t, err)
	require.NotNil(t, decision.MonthlyLimit)
	assert.True(t, decision.MonthlyLimit.Equal(decimal.RequireFromString("3000.00")))
}

func TestValidateAmountDeniesWhenAmountExceedsRemaining(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()
	limit := decimal.RequireFromString("3000.00")

	repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
		ID:                   uuid.New(),
		SponsorID:            sponsorID,
		Status:               cases.StatusRestricted,
		MonthlyDonationLimit: &limit,
	}, nil).Once()
	repo.On("SumMonthSuccessful", ctx, sponsorID).Return(decimal.RequireFromString("2800.00"), nil).Once()

	decision, err := service.ValidateAmount(ctx, sponsorID, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Message, "200.00 remaining")
}

func TestValidateAmountAllowsWithinRemaining(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()
	limit := decimal.RequireFromString("3000.00")

	repo.On("GetLatestCase", ctx, sponsorID).Return(&cases.FraudCase{
		ID:                   uuid.New(),
		SponsorID:            sponsorID,
		Status:               cases.StatusRestricted,
		MonthlyDonationLimit: &limit,
	}, nil).Once()
	repo.On("SumMonthSuccessful", ctx, sponsorID).Return(decimal.RequireFromString("2800.00"), nil).Once()

	decision, err := service.ValidateAmount(ctx, sponsorID, decimal.NewFromInt(200))
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestValidateAmountNormalSponsor(t *testing.T) {
	ctx := context.Background()
	repo := new(mockGateRepository)
	service := NewService(repo, decimal.Zero)
	sponsorID := uuid.New()

	repo.On("GetLatestCase", ctx, sponsorID).Return(nil, nil).Once()

	decision, err := service.ValidateAmount(ctx, sponsorID, decimal.NewFromInt(100000))
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}
