package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/cases"
)

// Repository reads enforcement state for gate decisions
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new gate repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetLatestCase returns the sponsor's most recent case by creation time,
// with no status filter
func (r *Repository) GetLatestCase(ctx context.Context, sponsorID uuid.UUID) (*cases.FraudCase, error) {
	var fc cases.FraudCase
	err := r.db.QueryRow(ctx, `
		SELECT id, sponsor_id, opened_by, current_risk_score, summary,
		       status, monthly_donation_limit, created_at, updated_at
		FROM fraud_cases
		WHERE sponsor_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, sponsorID).Scan(
		&fc.ID,
		&fc.SponsorID,
		&fc.OpenedBy,
		&fc.CurrentRiskScore,
		&fc.Summary,
		&fc.Status,
		&fc.MonthlyDonationLimit,
		&fc.CreatedAt,
		&fc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest case: %w", err)
	}
	return &fc, nil
}

// SumMonthSuccessful sums successful donations since the start of the
// current calendar month
func (r *Repository) SumMonthSuccessful(ctx context.Context, sponsorID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM donations
		WHERE sponsor_id = $1
		  AND status = 'success'
		  AND created_at >= DATE_TRUNC('month', NOW())
	`, sponsorID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum monthly donations: %w", err)
	}
	return sum, nil
}
