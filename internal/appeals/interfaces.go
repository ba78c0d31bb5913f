package appeals

import (
	"context"

	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/internal/cases"
)

// RepositoryInterface defines the interface for appeal storage
type RepositoryInterface interface {
	GetCase(ctx context.Context, caseID uuid.UUID) (*cases.FraudCase, error)
	HasPendingAppeal(ctx context.Context, caseID uuid.UUID) (bool, error)
	CreateAppeal(ctx context.Context, appeal *FraudAppeal) error
	GetAppealByID(ctx context.Context, id uuid.UUID) (*FraudAppeal, error)
	ListAppeals(ctx context.Context, status *AppealStatus, limit, offset int) ([]*FraudAppeal, int64, error)
	// Review runs the full appeal decision in a single transaction: appeal
	// update, mandatory case note, and on acceptance the score reduction
	// plus the auto-clear action when the score drops below the threshold.
	Review(ctx context.Context, p ReviewParams) (*FraudAppeal, error)
}
