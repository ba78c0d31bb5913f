package gate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/cases"
)

var gateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "donation_gate_decisions_total",
		Help: "Total number of donation gate decisions by status and outcome",
	},
	[]string{"status", "allowed"},
)

// Service makes donation gate decisions
type Service struct {
	repo         RepositoryInterface
	defaultLimit decimal.Decimal
}

// NewService creates a new gate service. defaultLimit applies when a
// restricted case carries no explicit monthly limit.
func NewService(repo RepositoryInterface, defaultLimit decimal.Decimal) *Service {
	if defaultLimit.IsZero() {
		defaultLimit = cases.DefaultRestrictedLimit
	}
	return &Service{repo: repo, defaultLimit: defaultLimit}
}

// Evaluate resolves the sponsor's current enforcement state into a decision.
// It always produces one: no case and a cleared latest case both mean normal.
func (s *Service) Evaluate(ctx context.Context, sponsorID uuid.UUID) (*Decision, error) {
	fc, err := s.repo.GetLatestCase(ctx, sponsorID)
	if err != nil {
		return nil, err
	}

	var decision *Decision
	if fc == nil || fc.Status == cases.StatusCleared {
		decision = &Decision{Allowed: true, Status: StatusNormal}
	} else {
		switch fc.Status {
		case cases.StatusBlocked:
			zero := decimal.Zero
			decision = &Decision{
				Allowed:      false,
				Status:       StatusBlocked,
				MonthlyLimit: &zero,
				Remaining:    &zero,
				Message:      "account is blocked for fraudulent activity; donations are not accepted",
			}
		case cases.StatusFrozen:
			zero := decimal.Zero
			decision = &Decision{
				Allowed:      false,
				Status:       StatusFrozen,
				MonthlyLimit: &zero,
				Remaining:    &zero,
				Message:      "account is frozen pending fraud review; donations are temporarily suspended",
			}
		case cases.StatusRestricted:
			decision, err = s.evaluateRestricted(ctx, sponsorID, fc)
			if err != nil {
				return nil, err
			}
		default: // under_review: informational only
			decision = &Decision{
				Allowed: true,
				Status:  StatusUnderReview,
				Message: "account is under fraud review; donations are still accepted",
			}
		}
	}

	gateDecisionsTotal.WithLabelValues(string(decision.Status), fmt.Sprintf("%t", decision.Allowed)).Inc()
	return decision, nil
}

func (s *Service) evaluateRestricted(ctx context.Context, sponsorID uuid.UUID, fc *cases.FraudCase) (*Decision, error) {
	limit := s.defaultLimit
	if fc.MonthlyDonationLimit != nil {
		limit = *fc.MonthlyDonationLimit
	}

	spent, err := s.repo.SumMonthSuccessful(ctx, sponsorID)
	if err != nil {
		return nil, err
	}

	remaining := limit.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	d := &Decision{
		Allowed:      remaining.IsPositive(),
		Status:       StatusRestricted,
		MonthlyLimit: &limit,
		Remaining:    &remaining,
	}
	if d.Allowed {
		d.Message = fmt.Sprintf("account is restricted; %s remaining of the %s monthly donation limit",
			remaining.StringFixed(2), limit.StringFixed(2))
	} else {
		d.Message = fmt.Sprintf("monthly donation limit of %s has been reached", limit.StringFixed(2))
	}
	return d, nil
}

// ValidateAmount checks whether a specific donation amount may proceed.
// A restricted sponsor with allowance left is still denied when the amount
// exceeds what remains.
func (s *Service) ValidateAmount(ctx context.Context, sponsorID uuid.UUID, amount decimal.Decimal) (*Decision, error) {
	decision, err := s.Evaluate(ctx, sponsorID)
	if err != nil {
		return nil, err
	}

	if !decision.Allowed {
		return decision, nil
	}

	if decision.Status == StatusRestricted && decision.Remaining != nil && amount.GreaterThan(*decision.Remaining) {
		denied := *decision
		denied.Allowed = false
		denied.Message = fmt.Sprintf("amount %s exceeds the %s remaining of the monthly donation limit",
			amount.StringFixed(2), decision.Remaining.StringFixed(2))
		return &denied, nil
	}

	return decision, nil
}
