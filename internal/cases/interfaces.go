package cases

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for fraud case storage
type RepositoryInterface interface {
	CreateCase(ctx context.Context, fc *FraudCase) error
	GetCaseByID(ctx context.Context, id uuid.UUID) (*FraudCase, error)
	// GetActiveCase returns the sponsor's case whose status is neither
	// cleared nor blocked, or nil. This is the case-creation predicate;
	// it deliberately differs from the one ApplyAction uses.
	GetActiveCase(ctx context.Context, sponsorID uuid.UUID) (*FraudCase, error)
	GetRiskScore(ctx context.Context, sponsorID uuid.UUID) (int, error)
	ListCases(ctx context.Context, status *CaseStatus, limit, offset int) ([]*FraudCase, int64, error)
	ListNotes(ctx context.Context, caseID uuid.UUID) ([]*FraudCaseNote, error)
	// ApplyAction runs the full admin decision in a single transaction:
	// case upsert, status/limit update, audit note, sponsor flag side
	// effect, and the clear-action score reduction.
	ApplyAction(ctx context.Context, p ActionParams) (*FraudCase, error)
}

// FlagCache invalidates cached sponsor flag status after a case action.
// Implemented by the sponsors service.
type FlagCache interface {
	InvalidateFlagStatus(ctx context.Context, sponsorID uuid.UUID)
}
