package risk

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

var staffReportsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraud_staff_reports_total",
		Help: "Total number of staff fraud reports by severity",
	},
	[]string{"severity"},
)

// Service handles risk score business logic
type Service struct {
	repo  RepositoryInterface
	cases CaseCreator
}

// NewService creates a new risk service
func NewService(repo RepositoryInterface, cases CaseCreator) *Service {
	return &Service{repo: repo, cases: cases}
}

// GetScore returns a sponsor's risk score, initializing it on first read
func (s *Service) GetScore(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error) {
	return s.repo.GetOrInit(ctx, sponsorID)
}

// AddPoints adjusts a sponsor's score by delta, floored at zero
func (s *Service) AddPoints(ctx context.Context, sponsorID uuid.UUID, delta int) (*SponsorRiskScore, error) {
	return s.repo.AddPoints(ctx, sponsorID, delta)
}

// RecordSignal appends a fraud signal without touching the score. The
// caller is responsible for applying the summed weight exactly once.
func (s *Service) RecordSignal(ctx context.Context, signal *FraudSignal) error {
	if signal.ID == uuid.Nil {
		signal.ID = uuid.New()
	}
	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now()
	}
	return s.repo.InsertSignal(ctx, signal)
}

// Recalculate repairs a sponsor's score from the signal log
func (s *Service) Recalculate(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error) {
	return s.repo.Recalculate(ctx, sponsorID)
}

// ApplyDecay runs the batch decay job and returns the number of sponsors decayed
func (s *Service) ApplyDecay(ctx context.Context, lookbackDays, decayPercent int) (int, error) {
	return s.repo.ApplyDecay(ctx, lookbackDays, decayPercent)
}

// ListSignals returns a sponsor's signal history, newest first
func (s *Service) ListSignals(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*FraudSignal, int64, error) {
	return s.repo.ListSignals(ctx, sponsorID, limit, offset)
}

// CreateStaffReport records a staff-submitted fraud report as a weighted
// signal, updates the sponsor's score, and opens a case when the report
// severity or the resulting risk level is high or critical.
func (s *Service) CreateStaffReport(ctx context.Context, sponsorID, staffID uuid.UUID, description string, details StaffReportDetails) (*FraudSignal, *SponsorRiskScore, error) {
	if strings.TrimSpace(description) == "" {
		return nil, nil, common.NewValidationError("report description is required")
	}
	if !ValidSeverity(details.Severity) {
		return nil, nil, common.NewValidationError("severity must be one of: low, medium, high, critical")
	}

	weight := StaffReportWeight(details.Severity, len(details.Categories), len(details.DonationIDs))

	donationIDs := make([]string, len(details.DonationIDs))
	for i, id := range details.DonationIDs {
		donationIDs[i] = id.String()
	}

	signal := &FraudSignal{
		ID:          uuid.New(),
		SponsorID:   sponsorID,
		Kind:        SignalStaffReport,
		Source:      SourceStaff,
		Weight:      weight,
		Description: description,
		CreatedBy:   &staffID,
		Metadata: map[string]interface{}{
			"severity":             string(details.Severity),
			"categories":           details.Categories,
			"related_donation_ids": donationIDs,
		},
		CreatedAt: time.Now(),
	}

	if err := s.repo.InsertSignal(ctx, signal); err != nil {
		return nil, nil, err
	}

	score, err := s.repo.AddPoints(ctx, sponsorID, weight)
	if err != nil {
		return nil, nil, err
	}

	staffReportsTotal.WithLabelValues(string(details.Severity)).Inc()

	severeReport := details.Severity == SeverityHigh || details.Severity == SeverityCritical
	severeScore := score.Level == LevelHigh || score.Level == LevelCritical
	if severeReport || severeScore {
		if caseID, err := s.cases.CheckAndCreateCase(ctx, sponsorID, &staffID); err != nil {
			logger.WithContext(ctx).Error("failed to auto-create case from staff report",
				zap.String("sponsor_id", sponsorID.String()),
				zap.Error(err))
		} else if caseID != nil {
			logger.WithContext(ctx).Info("case opened from staff report",
				zap.String("sponsor_id", sponsorID.String()),
				zap.String("case_id", caseID.String()))
		}
	}

	return signal, score, nil
}
