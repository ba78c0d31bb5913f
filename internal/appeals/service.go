package appeals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/internal/cases"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

// Service handles appeal business logic
type Service struct {
	repo      RepositoryInterface
	flagCache cases.FlagCache
}

// NewService creates a new appeal service
func NewService(repo RepositoryInterface, flagCache cases.FlagCache) *Service {
	return &Service{repo: repo, flagCache: flagCache}
}

// SubmitAppeal files a sponsor's dispute against their own fraud case
func (s *Service) SubmitAppeal(ctx context.Context, sponsorID, caseID uuid.UUID, text string, attachment *string) (*FraudAppeal, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewValidationError("appeal text is required")
	}

	fc, err := s.repo.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if fc == nil {
		return nil, common.NewNotFoundError("fraud case not found")
	}
	if fc.SponsorID != sponsorID {
		return nil, common.NewAuthorizationError("case does not belong to this sponsor")
	}

	pending, err := s.repo.HasPendingAppeal(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, common.NewConflictError("an appeal is already pending for this case")
	}

	appeal := &FraudAppeal{
		ID:          uuid.New(),
		FraudCaseID: caseID,
		SponsorID:   sponsorID,
		AppealText:  text,
		Attachment:  attachment,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateAppeal(ctx, appeal); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("appeal submitted",
		zap.String("sponsor_id", sponsorID.String()),
		zap.String("case_id", caseID.String()),
		zap.String("appeal_id", appeal.ID.String()))

	return appeal, nil
}

// GetAppeal returns one appeal
func (s *Service) GetAppeal(ctx context.Context, id uuid.UUID) (*FraudAppeal, error) {
	appeal, err := s.repo.GetAppealByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appeal == nil {
		return nil, common.NewNotFoundError("appeal not found")
	}
	return appeal, nil
}

// ListAppeals returns appeals for the admin queue
func (s *Service) ListAppeals(ctx context.Context, status *AppealStatus, limit, offset int) ([]*FraudAppeal, int64, error) {
	if status != nil {
		switch *status {
		case StatusPending, StatusAccepted, StatusRejected:
		default:
			return nil, 0, common.NewValidationError("invalid appeal status filter")
		}
	}
	return s.repo.ListAppeals(ctx, status, limit, offset)
}

// ReviewAppeal applies an admin decision to a pending appeal
func (s *Service) ReviewAppeal(ctx context.Context, appealID, adminID uuid.UUID, decision AppealDecision, justification string) (*FraudAppeal, error) {
	if decision != DecisionAccepted && decision != DecisionRejected {
		return nil, common.NewValidationError("decision must be accepted or rejected")
	}
	if strings.TrimSpace(justification) == "" {
		return nil, common.NewValidationError("justification is required")
	}

	appeal, err := s.repo.Review(ctx, ReviewParams{
		AppealID:      appealID,
		AdminID:       adminID,
		Decision:      decision,
		Justification: justification,
	})
	if err != nil {
		return nil, err
	}

	// Acceptance may auto-clear the case and unflag the sponsor.
	if decision == DecisionAccepted && s.flagCache != nil {
		s.flagCache.InvalidateFlagStatus(ctx, appeal.SponsorID)
	}

	logger.WithContext(ctx).Info("appeal reviewed",
		zap.String("appeal_id", appealID.String()),
		zap.String("admin_id", adminID.String()),
		zap.String("decision", string(decision)))

	return appeal, nil
}
