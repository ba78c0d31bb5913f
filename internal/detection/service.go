package detection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tumaini/sponsorship/internal/risk"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

var signalsDetectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fraud_signals_detected_total",
		Help: "Total number of automatically detected fraud signals by kind",
	},
	[]string{"kind"},
)

// Service orchestrates detection passes
type Service struct {
	repo   RepositoryInterface
	scores ScoreKeeper
	cases  risk.CaseCreator
}

// NewService creates a new detection service
func NewService(repo RepositoryInterface, scores ScoreKeeper, cases risk.CaseCreator) *Service {
	return &Service{repo: repo, scores: scores, cases: cases}
}

// RunDetection evaluates every rule against the sponsor's recent history and
// persists whatever fires. Each signal is recorded individually but the
// summed weight is applied to the score exactly once. Case auto-creation is
// best effort; its failure is logged and does not fail the pass.
func (s *Service) RunDetection(ctx context.Context, sponsorID uuid.UUID, trigger Trigger) ([]DetectedSignal, error) {
	snap, err := s.repo.BuildSnapshot(ctx, sponsorID, trigger)
	if err != nil {
		return nil, err
	}

	detected := RunDetectors(snap, trigger.Amount)
	if len(detected) == 0 {
		return nil, nil
	}

	total := 0
	for _, d := range detected {
		signal := &risk.FraudSignal{
			ID:          uuid.New(),
			SponsorID:   sponsorID,
			DonationID:  trigger.DonationID,
			Kind:        d.Kind,
			Source:      risk.SourceSystem,
			Weight:      d.Weight,
			Description: d.Description,
			CreatedAt:   time.Now(),
		}
		if err := s.scores.RecordSignal(ctx, signal); err != nil {
			return nil, err
		}
		signalsDetectedTotal.WithLabelValues(string(d.Kind)).Inc()
		total += d.Weight
	}

	score, err := s.scores.AddPoints(ctx, sponsorID, total)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("fraud signals detected",
		zap.String("sponsor_id", sponsorID.String()),
		zap.Int("signals", len(detected)),
		zap.Int("weight", total),
		zap.Int("score", score.Score),
		zap.String("level", string(score.Level)))

	if caseID, err := s.cases.CheckAndCreateCase(ctx, sponsorID, nil); err != nil {
		logger.WithContext(ctx).Error("failed to auto-create case after detection",
			zap.String("sponsor_id", sponsorID.String()),
			zap.Error(err))
	} else if caseID != nil {
		logger.WithContext(ctx).Info("case opened from detection",
			zap.String("sponsor_id", sponsorID.String()),
			zap.String("case_id", caseID.String()))
	}

	return detected, nil
}
