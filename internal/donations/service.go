package donations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/detection"
	"github.com/tumaini/sponsorship/internal/gate"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

var donationsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "donations_submitted_total",
		Help: "Total number of donation submissions by gate outcome",
	},
	[]string{"outcome"},
)

const detectionTimeout = 30 * time.Second

// Service handles donation business logic
type Service struct {
	repo     RepositoryInterface
	gate     GateChecker
	detector Detector
}

// NewService creates a new donation service
func NewService(repo RepositoryInterface, gate GateChecker, detector Detector) *Service {
	return &Service{repo: repo, gate: gate, detector: detector}
}

// SubmitDonation runs the gate check and creates a pending donation. A denied
// gate decision is returned alongside a nil donation; it is the only hard stop
// in the flow and carries the message the sponsor should see.
func (s *Service) SubmitDonation(ctx context.Context, sponsorID, childID uuid.UUID, amount decimal.Decimal, paymentRef string) (*Donation, *gate.Decision, error) {
	if !amount.IsPositive() {
		return nil, nil, common.NewValidationError("amount must be positive")
	}
	if strings.TrimSpace(paymentRef) == "" {
		return nil, nil, common.NewValidationError("payment reference is required")
	}

	decision, err := s.gate.ValidateAmount(ctx, sponsorID, amount)
	if err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		donationsSubmittedTotal.WithLabelValues("denied").Inc()
		logger.WithContext(ctx).Warn("donation denied by gate",
			zap.String("sponsor_id", sponsorID.String()),
			zap.String("status", string(decision.Status)),
			zap.String("amount", amount.StringFixed(2)))
		return nil, decision, nil
	}

	now := time.Now()
	d := &Donation{
		ID:         uuid.New(),
		SponsorID:  sponsorID,
		ChildID:    childID,
		Amount:     amount,
		Status:     StatusPending,
		PaymentRef: paymentRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateDonation(ctx, d); err != nil {
		return nil, nil, err
	}

	donationsSubmittedTotal.WithLabelValues("accepted").Inc()
	return d, decision, nil
}

// CompleteDonation records the gateway's final status and feeds the donation
// into the detection pass. Detection runs in the background and never blocks
// or fails the callback.
func (s *Service) CompleteDonation(ctx context.Context, donationID uuid.UUID, status DonationStatus) (*Donation, error) {
	if !ValidFinalStatus(status) {
		return nil, common.NewValidationError("status must be success or failed")
	}

	d, err := s.repo.UpdateStatus(ctx, donationID, status)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, common.NewNotFoundError("donation not found")
	}

	go s.runDetection(d)

	return d, nil
}

func (s *Service) runDetection(d *Donation) {
	ctx, cancel := context.WithTimeout(context.Background(), detectionTimeout)
	defer cancel()

	_, err := s.detector.RunDetection(ctx, d.SponsorID, detection.Trigger{
		DonationID: &d.ID,
		PaymentRef: d.PaymentRef,
		Amount:     d.Amount,
	})
	if err != nil {
		logger.Get().Error("detection pass failed",
			zap.String("sponsor_id", d.SponsorID.String()),
			zap.String("donation_id", d.ID.String()),
			zap.Error(err))
	}
}

// GetDonation returns one donation
func (s *Service) GetDonation(ctx context.Context, id uuid.UUID) (*Donation, error) {
	d, err := s.repo.GetDonationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, common.NewNotFoundError("donation not found")
	}
	return d, nil
}

// ListDonations returns a sponsor's donation history
func (s *Service) ListDonations(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*Donation, int64, error) {
	return s.repo.ListBySponsor(ctx, sponsorID, limit, offset)
}
