package cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tumaini/sponsorship/internal/risk"
)

// Repository handles fraud case data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new fraud case repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const caseColumns = `id, sponsor_id, opened_by, current_risk_score, summary,
       status, monthly_donation_limit, created_at, updated_at`

func scanCase(row pgx.Row) (*FraudCase, error) {
	var fc FraudCase
	err := row.Scan(
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
		return nil, err
	}
	return &fc, nil
}

// CreateCase inserts a new fraud case
func (r *Repository) CreateCase(ctx context.Context, fc *FraudCase) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO fraud_cases (
			id, sponsor_id, opened_by, current_risk_score, summary,
			status, monthly_donation_limit, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		fc.ID, fc.SponsorID, fc.OpenedBy, fc.CurrentRiskScore, fc.Summary,
		fc.Status, fc.MonthlyDonationLimit, fc.CreatedAt, fc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create fraud case: %w", err)
	}
	return nil
}

// GetCaseByID retrieves a fraud case by id
func (r *Repository) GetCaseByID(ctx context.Context, id uuid.UUID) (*FraudCase, error) {
	fc, err := scanCase(r.db.QueryRow(ctx, `
		SELECT `+caseColumns+` FROM fraud_cases WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fraud case: %w", err)
	}
	return fc, nil
}

// GetActiveCase returns the sponsor's most recent case whose status is
// neither cleared nor blocked, or nil when none exists.
func (r *Repository) GetActiveCase(ctx context.Context, sponsorID uuid.UUID) (*FraudCase, error) {
	fc, err := scanCase(r.db.QueryRow(ctx, `
		SELECT `+caseColumns+`
		FROM fraud_cases
		WHERE sponsor_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, sponsorID, StatusCleared, StatusBlocked))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active case: %w", err)
	}
	return fc, nil
}

// GetRiskScore reads the sponsor's current risk score, zero when no row exists
func (r *Repository) GetRiskScore(ctx context.Context, sponsorID uuid.UUID) (int, error) {
	var score int
	err := r.db.QueryRow(ctx, `
		SELECT score FROM sponsor_risk_scores WHERE sponsor_id = $1
	`, sponsorID).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read risk score: %w", err)
	}
	return score, nil
}

// ListCases returns cases, newest first, optionally filtered by status
func (r *Repository) ListCases(ctx context.Context, status *CaseStatus, limit, offset int) ([]*FraudCase, int64, error) {
	var total int64
	var rows pgx.Rows
	var err error

	if status != nil {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fraud_cases WHERE status = $1`, *status).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count fraud cases: %w", err)
		}
		rows, err = r.db.Query(ctx, `
			SELECT `+caseColumns+` FROM fraud_cases
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, *status, limit, offset)
	} else {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fraud_cases`).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count fraud cases: %w", err)
		}
		rows, err = r.db.Query(ctx, `
			SELECT `+caseColumns+` FROM fraud_cases
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query fraud cases: %w", err)
	}
	defer rows.Close()

	result := make([]*FraudCase, 0)
	for rows.Next() {
		fc, err := scanCase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan fraud case: %w", err)
		}
		result = append(result, fc)
	}

	return result, total, nil
}

// ListNotes returns a case's audit trail, oldest first
func (r *Repository) ListNotes(ctx context.Context, caseID uuid.UUID) ([]*FraudCaseNote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, fraud_case_id, admin_id, note, created_at
		FROM fraud_case_notes
		WHERE fraud_case_id = $1
		ORDER BY created_at ASC
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query case notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*FraudCaseNote, 0)
	for rows.Next() {
		var n FraudCaseNote
		if err := rows.Scan(&n.ID, &n.FraudCaseID, &n.AdminID, &n.Note, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case note: %w", err)
		}
		notes = append(notes, &n)
	}

	return notes, nil
}

// ApplyAction runs one admin decision atomically
func (r *Repository) ApplyAction(ctx context.Context, p ActionParams) (*FraudCase, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	fc, err := ApplyActionTx(ctx, tx, p)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return fc, nil
}

// ApplyActionTx applies an admin decision inside the caller's transaction.
// The appeal review flow reuses it so an accepted appeal and its auto-clear
// commit or roll back together.
//
// Steps: lock the score row, find the most recent case with status !=
// cleared (blocked cases are still actionable here, unlike the creation
// predicate), create an under_review case if none exists, update status /
// score snapshot / monthly limit, append the audit note, and apply the
// sponsor flag side effect. Clear also reduces the risk score by 20,
// floored at zero.
func ApplyActionTx(ctx context.Context, tx pgx.Tx, p ActionParams) (*FraudCase, error) {
	now := time.Now()

	_, err := tx.Exec(ctx, `
		INSERT INTO sponsor_risk_scores (sponsor_id, score, level, last_updated)
		VALUES ($1, 0, $2, NOW())
		ON CONFLICT (sponsor_id) DO NOTHING
	`, p.SponsorID, risk.LevelNormal)
	if err != nil {
		return nil, fmt.Errorf("failed to init risk score: %w", err)
	}

	var score int
	err = tx.QueryRow(ctx, `
		SELECT score FROM sponsor_risk_scores WHERE sponsor_id = $1 FOR UPDATE
	`, p.SponsorID).Scan(&score)
	if err != nil {
		return nil, fmt.Errorf("failed to lock risk score: %w", err)
	}

	eff, err := effectsForAction(p.Action, score, p.RestrictedLimit, p.Justification)
	if err != nil {
		return nil, err
	}

	fc, err := scanCase(tx.QueryRow(ctx, `
		SELECT `+caseColumns+`
		FROM fraud_cases
		WHERE sponsor_id = $1 AND status != $2
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, p.SponsorID, StatusCleared))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to find case: %w", err)
		}
		// No case to act on: the decision implicitly opens one.
		fc = &FraudCase{
			ID:               uuid.New(),
			SponsorID:        p.SponsorID,
			OpenedBy:         &p.AdminID,
			CurrentRiskScore: score,
			Summary:          fmt.Sprintf("case opened by admin %s action", p.Action),
			Status:           StatusUnderReview,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO fraud_cases (
				id, sponsor_id, opened_by, current_risk_score, summary,
				status, monthly_donation_limit, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, fc.ID, fc.SponsorID, fc.OpenedBy, fc.CurrentRiskScore, fc.Summary,
			fc.Status, fc.MonthlyDonationLimit, fc.CreatedAt, fc.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create case: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE fraud_cases
		SET status = $2, current_risk_score = $3, monthly_donation_limit = $4, updated_at = $5
		WHERE id = $1
	`, fc.ID, eff.Status, score, eff.Limit, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}
	fc.Status = eff.Status
	fc.CurrentRiskScore = score
	fc.MonthlyDonationLimit = eff.Limit
	fc.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO fraud_case_notes (id, fraud_case_id, admin_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), fc.ID, p.AdminID, eff.Note, now)
	if err != nil {
		return nil, fmt.Errorf("failed to append case note: %w", err)
	}

	if eff.Unflag {
		_, err = tx.Exec(ctx, `
			UPDATE sponsors
			SET flagged = false, flag_reason = NULL, flagged_at = NULL
			WHERE id = $1
		`, p.SponsorID)
		if err != nil {
			return nil, fmt.Errorf("failed to unflag sponsor: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE sponsor_risk_scores
			SET score = $2, level = $3, last_updated = $4
			WHERE sponsor_id = $1
		`, p.SponsorID, eff.NewScore, risk.LevelForScore(eff.NewScore), now)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce risk score: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE sponsors
			SET flagged = true, flag_reason = $2, flagged_at = $3
			WHERE id = $1
		`, p.SponsorID, eff.FlagReason, now)
		if err != nil {
			return nil, fmt.Errorf("failed to flag sponsor: %w", err)
		}
	}

	return fc, nil
}
