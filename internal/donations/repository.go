package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles donation data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new donation repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const donationColumns = `id, sponsor_id, child_id, amount, status, payment_ref, created_at, updated_at`

func scanDonation(row pgx.Row) (*Donation, error) {
	var d Donation
	err := row.Scan(
		&d.ID,
		&d.SponsorID,
		&d.ChildID,
		&d.Amount,
		&d.Status,
		&d.PaymentRef,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDonation inserts a new donation
func (r *Repository) CreateDonation(ctx context.Context, d *Donation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO donations (id, sponsor_id, child_id, amount, status, payment_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, d.ID, d.SponsorID, d.ChildID, d.Amount, d.Status, d.PaymentRef, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}
	return nil
}

// GetDonationByID retrieves a donation by id, nil when absent
func (r *Repository) GetDonationByID(ctx context.Context, id uuid.UUID) (*Donation, error) {
	d, err := scanDonation(r.db.QueryRow(ctx, `
		SELECT `+donationColumns+` FROM donations WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}
	return d, nil
}

// UpdateStatus sets a donation's final status and returns the updated row
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status DonationStatus) (*Donation, error) {
	d, err := scanDonation(r.db.QueryRow(ctx, `
		UPDATE donations
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+donationColumns+`
	`, id, status, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update donation status: %w", err)
	}
	return d, nil
}

// ListBySponsor returns a sponsor's donations, newest first
func (r *Repository) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*Donation, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM donations WHERE sponsor_id = $1`, sponsorID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count donations: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+donationColumns+` FROM donations
		WHERE sponsor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sponsorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query donations: %w", err)
	}
	defer rows.Close()

	result := make([]*Donation, 0)
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan donation: %w", err)
		}
		result = append(result, d)
	}

	return result, total, nil
}
