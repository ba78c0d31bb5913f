package gate

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/cases"
)

// RepositoryInterface reads the case and donation state the gate needs
type RepositoryInterface interface {
	// GetLatestCase returns the sponsor's most recent case regardless of
	// status, or nil. The gate inspects even cleared cases before falling
	// through to no-case behavior.
	GetLatestCase(ctx context.Context, sponsorID uuid.UUID) (*cases.FraudCase, error)
	// SumMonthSuccessful sums the sponsor's successful donations in the
	// current calendar month.
	SumMonthSuccessful(ctx context.Context, sponsorID uuid.UUID) (decimal.Decimal, error)
}
