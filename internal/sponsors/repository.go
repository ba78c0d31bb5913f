package sponsors

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles sponsor data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new sponsor repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetSponsorByID retrieves a sponsor by id, nil when absent
func (r *Repository) GetSponsorByID(ctx context.Context, id uuid.UUID) (*Sponsor, error) {
	var s Sponsor
	err := r.db.QueryRow(ctx, `
		SELECT id, email, full_name, flagged, flag_reason, flagged_at, created_at
		FROM sponsors
		WHERE id = $1
	`, id).Scan(
		&s.ID,
		&s.Email,
		&s.FullName,
		&s.Flagged,
		&s.FlagReason,
		&s.FlaggedAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sponsor: %w", err)
	}
	return &s, nil
}
