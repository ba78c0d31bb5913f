package cases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/risk"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

var caseActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraud_case_actions_total",
		Help: "Total number of admin case actions by action",
	},
	[]string{"action"},
)

// Service handles fraud case business logic
type Service struct {
	repo            RepositoryInterface
	flagCache       FlagCache
	restrictedLimit decimal.Decimal
}

// NewService creates a new fraud case service. restrictedLimit is the monthly
// donation cap the restrict action imposes.
func NewService(repo RepositoryInterface, flagCache FlagCache, restrictedLimit decimal.Decimal) *Service {
	if restrictedLimit.IsZero() {
		restrictedLimit = DefaultRestrictedLimit
	}
	return &Service{repo: repo, flagCache: flagCache, restrictedLimit: restrictedLimit}
}

// CheckAndCreateCase opens a fraud case for the sponsor if their current risk
// level is review or worse and they have no active case. It returns the new
// case's id, or nil when the score does not warrant a case or one is already
// open.
func (s *Service) CheckAndCreateCase(ctx context.Context, sponsorID uuid.UUID, openedBy *uuid.UUID) (*uuid.UUID, error) {
	score, err := s.repo.GetRiskScore(ctx, sponsorID)
	if err != nil {
		return nil, err
	}

	level := risk.LevelForScore(score)
	if level != risk.LevelReview && level != risk.LevelHigh && level != risk.LevelCritical {
		return nil, nil
	}

	existing, err := s.repo.GetActiveCase(ctx, sponsorID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	now := time.Now()
	fc := &FraudCase{
		ID:               uuid.New(),
		SponsorID:        sponsorID,
		OpenedBy:         openedBy,
		CurrentRiskScore: score,
		Summary:          fmt.Sprintf("risk score %d reached %s level", score, level),
		Status:           StatusUnderReview,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateCase(ctx, fc); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("fraud case opened",
		zap.String("sponsor_id", sponsorID.String()),
		zap.String("case_id", fc.ID.String()),
		zap.Int("risk_score", score))

	return &fc.ID, nil
}

// GetCase returns a case with its audit trail
func (s *Service) GetCase(ctx context.Context, caseID uuid.UUID) (*FraudCase, []*FraudCaseNote, error) {
	fc, err := s.repo.GetCaseByID(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	if fc == nil {
		return nil, nil, common.NewNotFoundError("fraud case not found")
	}

	notes, err := s.repo.ListNotes(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}

	return fc, notes, nil
}

// ListCases returns cases for the admin queue, optionally filtered by status
func (s *Service) ListCases(ctx context.Context, status *CaseStatus, limit, offset int) ([]*FraudCase, int64, error) {
	if status != nil {
		switch *status {
		case StatusUnderReview, StatusRestricted, StatusFrozen, StatusBlocked, StatusCleared:
		default:
			return nil, 0, common.NewValidationError("invalid case status filter")
		}
	}
	return s.repo.ListCases(ctx, status, limit, offset)
}

// AdminTakeAction applies an admin decision to a sponsor's case. A
// justification is mandatory; it becomes the audit note for the decision.
func (s *Service) AdminTakeAction(ctx context.Context, sponsorID, adminID uuid.UUID, action CaseAction, justification string) (*FraudCase, error) {
	if _, ok := StatusForAction(action); !ok {
		return nil, common.NewValidationError("action must be one of: clear, restrict, freeze, block")
	}
	if strings.TrimSpace(justification) == "" {
		return nil, common.NewValidationError("justification is required")
	}

	fc, err := s.repo.ApplyAction(ctx, ActionParams{
		SponsorID:       sponsorID,
		AdminID:         adminID,
		Action:          action,
		Justification:   justification,
		RestrictedLimit: s.restrictedLimit,
	})
	if err != nil {
		return nil, err
	}

	caseActionsTotal.WithLabelValues(string(action)).Inc()
	if s.flagCache != nil {
		s.flagCache.InvalidateFlagStatus(ctx, sponsorID)
	}

	logger.WithContext(ctx).Info("admin case action applied",
		zap.String("sponsor_id", sponsorID.String()),
		zap.String("case_id", fc.ID.String()),
		zap.String("action", string(action)),
		zap.String("admin_id", adminID.String()))

	return fc, nil
}
