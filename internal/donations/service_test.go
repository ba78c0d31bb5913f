package donations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tumaini/sponsorship/internal/detection"
	"github.com/tumaini/sponsorship/internal/gate"
	"github.com/tumaini/sponsorship/pkg/common"
)

type mockDonationRepository struct {
	mock.Mock
}

func (m *mockDonationRepository) CreateDonation(ctx context.Context, d *Donation) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockDonationRepository) GetDonationByID(ctx context.Context, id uuid.UUID) (*Donation, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*Donation)
	return d, args.Error(1)
}

func (m *mockDonationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status DonationStatus) (*Donation, error) {
	args := m.Called(ctx, id, status)
	d, _ := args.Get(0).(*Donation)
	return d, args.Error(1)
}

func (m *mockDonationRepository) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*Donation, int64, error) {
	args := m.Called(ctx, sponsorID, limit, offset)
	result, _ := args.Get(0).([]*Donation)
	return result, int64(args.Int(1)), args.Error(2)
}

type mockGateChecker struct {
	mock.Mock
}

func (m *mockGateChecker) ValidateAmount(ctx context.Context, sponsorID uuid.UUID, amount decimal.Decimal) (*gate.Decision, error) {
	args := m.Called(ctx, sponsorID, amount)
	decision, _ := args.Get(0).(*gate.Decision)
	return decision, args.Error(1)
}

type mockDetector struct {
	mock.Mock
}

func (m *mockDetector) RunDetection(ctx context.Context, sponsorID uuid.UUID, trigger detection.Trigger) ([]detection.DetectedSignal, error) {
	args := m.Called(ctx, sponsorID, trigger)
	signals, _ := args.Get(0).([]detection.DetectedSignal)
	return signals, args.Error(1)
}

func TestSubmitDonationAllowed(t *testing.T) {
	ctx := context.Background()
	repo := new(mockDonationRepository)
	gc := new(mockGateChecker)
	service := NewService(repo, gc, new(mockDetector))
	sponsorID := uuid.New()
	childID := uuid.New()
	amount := decimal.NewFromInt(100)

	gc.On("ValidateAmount", ctx, sponsorID, amount).Return(&gate.Decision{
		Allowed: true,
		Status:  gate.StatusNormal,
	}, nil).Once()
	repo.On("CreateDonation", ctx, mock.MatchedBy(func(d *Donation) bool {
		return d.SponsorID == sponsorID &&
			d.ChildID == childID &&
			d.Status == StatusPending &&
			d.Amount.Equal(amount)
	})).Return(nil).Once()

	donation, decision, err := service.SubmitDonation(ctx, sponsorID, childID, amount, "pay-ref-1")
	require.NoError(t, err)
	require.NotNil(t, donation)
	assert.True(t, decision.Allowed)
	repo.AssertExpectations(t)
}

func TestSubmitDonationDeniedByGate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockDonationRepository)
	gc := new(mockGateChecker)
	service := NewService(repo, gc, new(mockDetector))
	sponsorID := uuid.New()
	amount := decimal.NewFromInt(100)

	gc.On("ValidateAmount", ctx, sponsorID, amount).Return(&gate.Decision{
		Allowed: false,
		Status:  gate.StatusFrozen,
		Message: "account is frozen pending fraud review; donations are temporarily suspended",
	}, nil).Once()

	donation, decision, err := service.SubmitDonation(ctx, sponsorID, uuid.New(), amount, "pay-ref-2")
	require.NoError(t, err)
	assert.Nil(t, donation)
	require.NotNil(t, decision)
	assert.False(t, decision.Allowed)
	repo.AssertNotCalled(t, "CreateDonation", mock.Anything, mock.Anything)
}

func TestSubmitDonationValidation(t *testing.T) {
	ctx := context.Background()
	gc := new(mockGateChecker)
	service := NewService(new(mockDonationRepository), gc, new(mockDetector))

	_, _, err := service.SubmitDonation(ctx, uuid.New(), uuid.New(), decimal.Zero, "ref")
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	_, _, err = service.SubmitDonation(ctx, uuid.New(), uuid.New(), decimal.NewFromInt(50), "  ")
	require.Error(t, err)
	appErr, ok = err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	gc.AssertNotCalled(t, "ValidateAmount", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteDonationTriggersDetection(t *testing.T) {
	ctx := context.Background()
	repo := new(mockDonationRepository)
	detector := new(mockDetector)
	service := NewService(repo, new(mockGateChecker), detector)
	donationID := uuid.New()
	sponsorID := uuid.New()

	updated := &Donation{
		ID:         donationID,
		SponsorID:  sponsorID,
		Amount:     decimal.NewFromInt(40),
		Status:     StatusFailed,
		PaymentRef: "pay-ref-3",
	}
	repo.On("UpdateStatus", ctx, donationID, StatusFailed).Return(updated, nil).Once()

	detectionRan := make(chan struct{})
	detector.On("RunDetection", mock.Anything, sponsorID, mock.MatchedBy(func(tr detection.Trigger) bool {
		return tr.DonationID != nil && *tr.DonationID == donationID && tr.PaymentRef == "pay-ref-3"
	})).Run(func(mock.Arguments) {
		close(detectionRan)
	}).Return(nil, nil).Once()

	d, err := service.CompleteDonation(ctx, donationID, StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, d.Status)

	select {
	case <-detectionRan:
	case <-time.After(time.Second):
		t.Fatal("detection pass was not triggered")
	}
	detector.AssertExpectations(t)
}

func TestCompleteDonationRejectsNonFinalStatus(t *testing.T) {
	ctx := context.Background()
	repo := new(mockDonationRepository)
	service := NewService(repo, new(mockGateChecker), new(mockDetector))

	_, err := service.CompleteDonation(ctx, uuid.New(), StatusPending)
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteDonationNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockDonationRepository)
	service := NewService(repo, new(mockGateChecker), new(mockDetector))
	donationID := uuid.New()

	repo.On("UpdateStatus", ctx, donationID, StatusSuccess).Return(nil, nil).Once()

	_, err := service.CompleteDonation(ctx, donationID, StatusSuccess)
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}
