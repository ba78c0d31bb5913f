package detection

import (
	"context"

	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/internal/risk"
)

// RepositoryInterface builds history snapshots for detection passes
type RepositoryInterface interface {
	BuildSnapshot(ctx context.Context, sponsorID uuid.UUID, trigger Trigger) (*HistorySnapshot, error)
}

// ScoreKeeper persists detected signals and applies their summed weight.
// Implemented by the risk service.
type ScoreKeeper interface {
	RecordSignal(ctx context.Context, signal *risk.FraudSignal) error
	AddPoints(ctx context.Context, sponsorID uuid.UUID, delta int) (*risk.SponsorRiskScore, error)
}
