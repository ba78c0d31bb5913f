package donations

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/detection"
	"github.com/tumaini/sponsorship/internal/gate"
)

// RepositoryInterface defines the interface for donation storage
type RepositoryInterface interface {
	CreateDonation(ctx context.Context, d *Donation) error
	GetDonationByID(ctx context.Context, id uuid.UUID) (*Donation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status DonationStatus) (*Donation, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*Donation, int64, error)
}

// GateChecker is the enforcement checkpoint consulted before accepting a
// donation. Implemented by the gate service.
type GateChecker interface {
	ValidateAmount(ctx context.Context, sponsorID uuid.UUID, amount decimal.Decimal) (*gate.Decision, error)
}

// Detector runs a fraud detection pass after a donation reaches a final
// status. Implemented by the detection service.
type Detector interface {
	RunDetection(ctx context.Context, sponsorID uuid.UUID, trigger detection.Trigger) ([]detection.DetectedSignal, error)
}
