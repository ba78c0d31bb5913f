package detection

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads donation history for detection passes
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new detection repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// BuildSnapshot aggregates the sponsor's recent donation history in a single
// query, plus one extra query for payment-ref reuse when the trigger carries
// a reference.
func (r *Repository) BuildSnapshot(ctx context.Context, sponsorID uuid.UUID, trigger Trigger) (*HistorySnapshot, error) {
	snap := &HistorySnapshot{}

	var avg *decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'failed' AND created_at > NOW() - INTERVAL '24 hours'),
			COUNT(*) FILTER (WHERE status = 'failed' AND created_at > NOW() - INTERVAL '7 days'),
			COUNT(DISTINCT child_id) FILTER (WHERE created_at > NOW() - INTERVAL '7 days'),
			AVG(amount) FILTER (WHERE status = 'success' AND created_at > NOW() - INTERVAL '90 days'),
			COUNT(*) FILTER (WHERE amount BETWEEN 1 AND 10 AND created_at > NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '5 minutes'),
			COUNT(*) FILTER (WHERE EXTRACT(HOUR FROM created_at) BETWEEN 2 AND 5 AND created_at > NOW() - INTERVAL '30 days')
		FROM donations
		WHERE sponsor_id = $1
	`, sponsorID).Scan(
		&snap.FailedLast24h,
		&snap.FailedLast7d,
		&snap.DistinctChildren7d,
		&avg,
		&snap.MicroDonations7d,
		&snap.AttemptsLast5m,
		&snap.OddHourDonations30d,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build history snapshot: %w", err)
	}
	if avg != nil {
		snap.AvgSuccess90d = *avg
	}

	if strings.TrimSpace(trigger.PaymentRef) != "" {
		err = r.db.QueryRow(ctx, `
			SELECT COUNT(DISTINCT sponsor_id) FROM donations WHERE payment_ref = $1
		`, trigger.PaymentRef).Scan(&snap.PaymentRefSponsors)
		if err != nil {
			return nil, fmt.Errorf("failed to count payment ref sponsors: %w", err)
		}
	}

	return snap, nil
}
