package risk

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for risk score and signal storage
type RepositoryInterface interface {
	// Score operations
	GetOrInit(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error)
	AddPoints(ctx context.Context, sponsorID uuid.UUID, delta int) (*SponsorRiskScore, error)
	Recalculate(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error)
	ApplyDecay(ctx context.Context, lookbackDays, decayPercent int) (int, error)

	// Signal operations (append-only)
	InsertSignal(ctx context.Context, signal *FraudSignal) error
	ListSignals(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*FraudSignal, int64, error)
}

// CaseCreator opens a fraud case when a sponsor's risk level warrants one.
// Implemented by the cases service; declared here so staff reports can
// trigger case creation without a package cycle.
type CaseCreator interface {
	CheckAndCreateCase(ctx context.Context, sponsorID uuid.UUID, openedBy *uuid.UUID) (*uuid.UUID, error)
}
