package risk

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tumaini/sponsorship/pkg/common"
)

type mockRiskRepository struct {
	mock.Mock
}

func (m *mockRiskRepository) GetOrInit(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error) {
	args := m.Called(ctx, sponsorID)
	score, _ := args.Get(0).(*SponsorRiskScore)
	return score, args.Error(1)
}

func (m *mockRiskRepository) AddPoints(ctx context.Context, sponsorID uuid.UUID, delta int) (*SponsorRiskScore, error) {
	args := m.Called(ctx, sponsorID, delta)
	score, _ := args.Get(0).(*SponsorRiskScore)
	return score, args.Error(1)
}

func (m *mockRiskRepository) Recalculate(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error) {
	args := m.Called(ctx, sponsorID)
	score, _ := args.Get(0).(*SponsorRiskScore)
	return score, args.Error(1)
}

func (m *mockRiskRepository) ApplyDecay(ctx context.Context, lookbackDays, decayPercent int) (int, error) {
	args := m.Called(ctx, lookbackDays, decayPercent)
	return args.Int(0), args.Error(1)
}

func (m *mockRiskRepository) InsertSignal(ctx context.Context, signal *FraudSignal) error {
	args := m.Called(ctx, signal)
	return args.Error(0)
}

func (m *mockRiskRepository) ListSignals(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*FraudSignal, int64, error) {
	args := m.Called(ctx, sponsorID, limit, offset)
	signals, _ := args.Get(0).([]*FraudSignal)
	return signals, int64(args.Int(1)), args.Error(2)
}

type mockCaseCreator struct {
	mock.Mock
}

func (m *mockCaseCreator) CheckAndCreateCase(ctx context.Context, sponsorID uuid.UUID, openedBy *uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, sponsorID, openedBy)
	id, _ := args.Get(0).(*uuid.UUID)
	return id, args.Error(1)
}

func TestCreateStaffReportRecordsSignalAndUpdatesScore(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	cases := new(mockCaseCreator)
	service := NewService(repo, cases)
	sponsorID := uuid.New()
	staffID := uuid.New()

	details := StaffReportDetails{
		Severity:    SeverityMedium,
		Categories:  []string{"payment_abuse", "identity"},
		DonationIDs: []uuid.UUID{uuid.New()},
	}
	expectedWeight := StaffReportWeight(SeverityMedium, 2, 1) // 20 + 6 + 2 = 28

	repo.On("InsertSignal", ctx, mock.MatchedBy(func(s *FraudSignal) bool {
		return s.SponsorID == sponsorID &&
			s.Kind == SignalStaffReport &&
			s.Source == SourceStaff &&
			s.Weight == expectedWeight &&
			s.CreatedBy != nil && *s.CreatedBy == staffID &&
			s.Metadata["severity"] == "medium"
	})).Return(nil).Once()
	repo.On("AddPoints", ctx, sponsorID, expectedWeight).Return(&SponsorRiskScore{
		SponsorID: sponsorID,
		Score:     expectedWeight,
		Level:     LevelForScore(expectedWeight),
	}, nil).Once()

	signal, score, err := service.CreateStaffReport(ctx, sponsorID, staffID, "multiple failed cards", details)
	require.NoError(t, err)
	assert.Equal(t, expectedWeight, signal.Weight)
	assert.Equal(t, expectedWeight, score.Score)
	assert.Equal(t, LevelWatch, score.Level)
	repo.AssertExpectations(t)
	cases.AssertNotCalled(t, "CheckAndCreateCase", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateStaffReportOpensCaseOnHighSeverity(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	cases := new(mockCaseCreator)
	service := NewService(repo, cases)
	sponsorID := uuid.New()
	staffID := uuid.New()
	caseID := uuid.New()

	details := StaffReportDetails{Severity: SeverityHigh}
	weight := StaffReportWeight(SeverityHigh, 0, 0) // 30

	repo.On("InsertSignal", ctx, mock.Anything).Return(nil).Once()
	repo.On("AddPoints", ctx, sponsorID, weight).Return(&SponsorRiskScore{
		SponsorID: sponsorID,
		Score:     30,
		Level:     LevelWatch,
	}, nil).Once()
	cases.On("CheckAndCreateCase", ctx, sponsorID, &staffID).Return(&caseID, nil).Once()

	_, _, err := service.CreateStaffReport(ctx, sponsorID, staffID, "suspicious pattern", details)
	require.NoError(t, err)
	cases.AssertExpectations(t)
}

func TestCreateStaffReportOpensCaseWhenResultingLevelHigh(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	cases := new(mockCaseCreator)
	service := NewService(repo, cases)
	sponsorID := uuid.New()
	staffID := uuid.New()
	caseID := uuid.New()

	details := StaffReportDetails{Severity: SeverityMedium}

	repo.On("InsertSignal", ctx, mock.Anything).Return(nil).Once()
	repo.On("AddPoints", ctx, sponsorID, 20).Return(&SponsorRiskScore{
		SponsorID: sponsorID,
		Score:     65,
		Level:     LevelHigh,
	}, nil).Once()
	cases.On("CheckAndCreateCase", ctx, sponsorID, &staffID).Return(&caseID, nil).Once()

	_, score, err := service.CreateStaffReport(ctx, sponsorID, staffID, "repeat offender", details)
	require.NoError(t, err)
	assert.Equal(t, LevelHigh, score.Level)
	cases.AssertExpectations(t)
}

func TestCreateStaffReportValidation(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	cases := new(mockCaseCreator)
	service := NewService(repo, cases)

	_, _, err := service.CreateStaffReport(ctx, uuid.New(), uuid.New(), "  ", StaffReportDetails{Severity: SeverityLow})
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	_, _, err = service.CreateStaffReport(ctx, uuid.New(), uuid.New(), "something", StaffReportDetails{Severity: "extreme"})
	require.Error(t, err)
	appErr, ok = err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	repo.AssertNotCalled(t, "InsertSignal", mock.Anything, mock.Anything)
}

func TestRecordSignalFillsDefaults(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRiskRepository)
	service := NewService(repo, new(mockCaseCreator))

	repo.On("InsertSignal", ctx, mock.MatchedBy(func(s *FraudSignal) bool {
		return s.ID != uuid.Nil && !s.CreatedAt.IsZero()
	})).Return(nil).Once()

	err := service.RecordSignal(ctx, &FraudSignal{
		SponsorID: uuid.New(),
		Kind:      SignalBotVelocity,
		Source:    SourceSystem,
		Weight:    20,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
