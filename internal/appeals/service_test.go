package appeals

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tumaini/sponsorship/internal/cases"
	"github.com/tumaini/sponsorship/pkg/common"
)

type mockAppealRepository struct {
	mock.Mock
}

func (m *mockAppealRepository) GetCase(ctx context.Context, caseID uuid.UUID) (*cases.FraudCase, error) {
	args := m.Called(ctx, caseID)
	fc, _ := args.Get(0).(*cases.FraudCase)
	return fc, args.Error(1)
}

func (m *mockAppealRepository) HasPendingAppeal(ctx context.Context, caseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, caseID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAppealRepository) CreateAppeal(ctx context.Context, appeal *FraudAppeal) error {
	args := m.Called(ctx, appeal)
	return args.Error(0)
}

func (m *mockAppealRepository) GetAppealByID(ctx context.Context, id uuid.UUID) (*FraudAppeal, error) {
	args := m.Called(ctx, id)
	appeal, _ := args.Get(0).(*FraudAppeal)
	return appeal, args.Error(1)
}

func (m *mockAppealRepository) ListAppeals(ctx context.Context, status *AppealStatus, limit, offset int) ([]*FraudAppeal, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	appeals, _ := args.Get(0).([]*FraudAppeal)
	return appeals, int64(args.Int(1)), args.Error(2)
}

func (m *mockAppealRepository) Review(ctx context.Context, p ReviewParams) (*FraudAppeal, error) {
	args := m.Called(ctx, p)
	appeal, _ := args.Get(0).(*FraudAppeal)
	return appeal, args.Error(1)
}

type mockFlagCache struct {
	mock.Mock
}

func (m *mockFlagCache) InvalidateFlagStatus(ctx context.Context, sponsorID uuid.UUID) {
	m.Called(ctx, sponsorID)
}

func TestSubmitAppeal(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	service := NewService(repo, nil)
	sponsorID := uuid.New()
	caseID := uuid.New()

	repo.On("GetCase", ctx, caseID).Return(&cases.FraudCase{
		ID:        caseID,
		SponsorID: sponsorID,
		Status:    cases.StatusRestricted,
	}, nil).Once()
	repo.On("HasPendingAppeal", ctx, caseID).Return(false, nil).Once()
	repo.On("CreateAppeal", ctx, mock.MatchedBy(func(a *FraudAppeal) bool {
		return a.FraudCaseID == caseID &&
			a.SponsorID == sponsorID &&
			a.Status == StatusPending
	})).Return(nil).Once()

	appeal, err := service.SubmitAppeal(ctx, sponsorID, caseID, "these payments were mine", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, appeal.Status)
	repo.AssertExpectations(t)
}

func TestSubmitAppealRejectsForeignCase(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	service := NewService(repo, nil)
	caseID := uuid.New()

	repo.On("GetCase", ctx, caseID).Return(&cases.FraudCase{
		ID:        caseID,
		SponsorID: uuid.New(),
	}, nil).Once()

	_, err := service.SubmitAppeal(ctx, uuid.New(), caseID, "not my case but trying", nil)
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeAuthorization, appErr.Code)
	repo.AssertNotCalled(t, "CreateAppeal", mock.Anything, mock.Anything)
}

func TestSubmitAppealRejectsDuplicatePending(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	service := NewService(repo, nil)
	sponsorID := uuid.New()
	caseID := uuid.New()

	repo.On("GetCase", ctx, caseID).Return(&cases.FraudCase{
		ID:        caseID,
		SponsorID: sponsorID,
	}, nil).Once()
	repo.On("HasPendingAppeal", ctx, caseID).Return(true, nil).Once()

	_, err := service.SubmitAppeal(ctx, sponsorID, caseID, "please review again", nil)
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeConflict, appErr.Code)
	repo.AssertNotCalled(t, "CreateAppeal", mock.Anything, mock.Anything)
}

func TestSubmitAppealValidatesText(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	service := NewService(repo, nil)

	_, err := service.SubmitAppeal(ctx, uuid.New(), uuid.New(), "   ", nil)
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)
	repo.AssertNotCalled(t, "GetCase", mock.Anything, mock.Anything)
}

func TestSubmitAppealCaseNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	service := NewService(repo, nil)
	caseID := uuid.New()

	repo.On("GetCase", ctx, caseID).Return(nil, nil).Once()

	_, err := service.SubmitAppeal(ctx, uuid.New(), caseID, "where is my case", nil)
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestReviewAppealValidation(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	service := NewService(repo, nil)

	_, err := service.ReviewAppeal(ctx, uuid.New(), uuid.New(), AppealDecision("maybe"), "reason")
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	_, err = service.ReviewAppeal(ctx, uuid.New(), uuid.New(), DecisionAccepted, "")
	require.Error(t, err)
	appErr, ok = err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeValidation, appErr.Code)

	repo.AssertNotCalled(t, "Review", mock.Anything, mock.Anything)
}

func TestReviewAppealAcceptedInvalidatesFlagCache(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	cache := new(mockFlagCache)
	service := NewService(repo, cache)
	appealID := uuid.New()
	adminID := uuid.New()
	sponsorID := uuid.New()

	repo.On("Review", ctx, ReviewParams{
		AppealID:      appealID,
		AdminID:       adminID,
		Decision:      DecisionAccepted,
		Justification: "evidence checks out",
	}).Return(&FraudAppeal{
		ID:         appealID,
		SponsorID:  sponsorID,
		Status:     StatusAccepted,
		ReviewedBy: &adminID,
	}, nil).Once()
	cache.On("InvalidateFlagStatus", ctx, sponsorID).Return().Once()

	appeal, err := service.ReviewAppeal(ctx, appealID, adminID, DecisionAccepted, "evidence checks out")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, appeal.Status)
	cache.AssertExpectations(t)
}

func TestReviewAppealRejectedSkipsFlagCache(t *testing.T) {
	ctx := context.Background()
	repo := new(mockAppealRepository)
	cache := new(mockFlagCache)
	service := NewService(repo, cache)
	appealID := uuid.New()
	adminID := uuid.New()

	repo.On("Review", ctx, mock.Anything).Return(&FraudAppeal{
		ID:     appealID,
		Status: StatusRejected,
	}, nil).Once()

	_, err := service.ReviewAppeal(ctx, appealID, adminID, DecisionRejected, "pattern is clear abuse")
	require.NoError(t, err)
	cache.AssertNotCalled(t, "InvalidateFlagStatus", mock.Anything, mock.Anything)
}
