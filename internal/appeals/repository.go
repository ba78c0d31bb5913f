package appeals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tumaini/sponsorship/internal/cases"
	"github.com/tumaini/sponsorship/internal/risk"
	"github.com/tumaini/sponsorship/pkg/common"
)

// Repository handles appeal data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new appeal repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const appealColumns = `id, fraud_case_id, sponsor_id, appeal_text, attachment, status, reviewed_by, created_at`

func scanAppeal(row pgx.Row) (*FraudAppeal, error) {
	var a FraudAppeal
	err := row.Scan(
		&a.ID,
		&a.FraudCaseID,
		&a.SponsorID,
		&a.AppealText,
		&a.Attachment,
		&a.Status,
		&a.ReviewedBy,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetCase returns the fraud case an appeal targets, nil when absent
func (r *Repository) GetCase(ctx context.Context, caseID uuid.UUID) (*cases.FraudCase, error) {
	var fc cases.FraudCase
	err := r.db.QueryRow(ctx, `
		SELECT id, sponsor_id, opened_by, current_risk_score, summary,
		       status, monthly_donation_limit, created_at, updated_at
		FROM fraud_cases
		WHERE id = $1
	`, caseID).Scan(
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
		return nil, fmt.Errorf("failed to get fraud case: %w", err)
	}
	return &fc, nil
}

// HasPendingAppeal reports whether a pending appeal exists for the case. A
// partial unique index on (fraud_case_id) WHERE status = 'pending' backstops
// this check against concurrent submissions.
func (r *Repository) HasPendingAppeal(ctx context.Context, caseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fraud_appeals WHERE fraud_case_id = $1 AND status = $2
		)
	`, caseID, StatusPending).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending appeal: %w", err)
	}
	return exists, nil
}

// CreateAppeal inserts a new pending appeal
func (r *Repository) CreateAppeal(ctx context.Context, appeal *FraudAppeal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO fraud_appeals (id, fraud_case_id, sponsor_id, appeal_text, attachment, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, appeal.ID, appeal.FraudCaseID, appeal.SponsorID, appeal.AppealText, appeal.Attachment, appeal.Status, appeal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create appeal: %w", err)
	}
	return nil
}

// GetAppealByID retrieves an appeal by id, nil when absent
func (r *Repository) GetAppealByID(ctx context.Context, id uuid.UUID) (*FraudAppeal, error) {
	a, err := scanAppeal(r.db.QueryRow(ctx, `
		SELECT `+appealColumns+` FROM fraud_appeals WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appeal: %w", err)
	}
	return a, nil
}

// ListAppeals returns appeals, newest first, optionally filtered by status
func (r *Repository) ListAppeals(ctx context.Context, status *AppealStatus, limit, offset int) ([]*FraudAppeal, int64, error) {
	var total int64
	var rows pgx.Rows
	var err error

	if status != nil {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fraud_appeals WHERE status = $1`, *status).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count appeals: %w", err)
		}
		rows, err = r.db.Query(ctx, `
			SELECT `+appealColumns+` FROM fraud_appeals
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, *status, limit, offset)
	} else {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fraud_appeals`).Scan(&total)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count appeals: %w", err)
		}
		rows, err = r.db.Query(ctx, `
			SELECT `+appealColumns+` FROM fraud_appeals
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query appeals: %w", err)
	}
	defer rows.Close()

	result := make([]*FraudAppeal, 0)
	for rows.Next() {
		a, err := scanAppeal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan appeal: %w", err)
		}
		result = append(result, a)
	}

	return result, total, nil
}

// Review applies an admin appeal decision atomically. Acceptance reduces the
// sponsor's risk score and, when the result drops below the auto-clear
// threshold, runs the clear action inside the same transaction.
func (r *Repository) Review(ctx context.Context, p ReviewParams) (*FraudAppeal, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	appeal, err := scanAppeal(tx.QueryRow(ctx, `
		SELECT `+appealColumns+` FROM fraud_appeals WHERE id = $1 FOR UPDATE
	`, p.AppealID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("appeal not found")
		}
		return nil, fmt.Errorf("failed to lock appeal: %w", err)
	}
	if appeal.Status != StatusPending {
		return nil, common.NewConflictError("appeal has already been reviewed")
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `
		UPDATE fraud_appeals SET status = $2, reviewed_by = $3 WHERE id = $1
	`, appeal.ID, AppealStatus(p.Decision), p.AdminID)
	if err != nil {
		return nil, fmt.Errorf("failed to update appeal: %w", err)
	}
	appeal.Status = AppealStatus(p.Decision)
	appeal.ReviewedBy = &p.AdminID

	note := reviewNote(appeal.ID, p.Decision, p.Justification)
	_, err = tx.Exec(ctx, `
		INSERT INTO fraud_case_notes (id, fraud_case_id, admin_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), appeal.FraudCaseID, p.AdminID, note, now)
	if err != nil {
		return nil, fmt.Errorf("failed to append case note: %w", err)
	}

	if p.Decision == DecisionAccepted {
		var score int
		err = tx.QueryRow(ctx, `
			SELECT score FROM sponsor_risk_scores WHERE sponsor_id = $1 FOR UPDATE
		`, appeal.SponsorID).Scan(&score)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to lock risk score: %w", err)
		}

		newScore, autoClear := acceptedOutcome(score)
		_, err = tx.Exec(ctx, `
			UPDATE sponsor_risk_scores
			SET score = $2, level = $3, last_updated = $4
			WHERE sponsor_id = $1
		`, appeal.SponsorID, newScore, risk.LevelForScore(newScore), now)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce risk score: %w", err)
		}

		if autoClear {
			_, err = cases.ApplyActionTx(ctx, tx, cases.ActionParams{
				SponsorID:       appeal.SponsorID,
				AdminID:         p.AdminID,
				Action:          cases.ActionClear,
				Justification:   fmt.Sprintf("appeal accepted, risk score %d below clearance threshold", newScore),
				RestrictedLimit: cases.DefaultRestrictedLimit,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to auto-clear case: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return appeal, nil
}
