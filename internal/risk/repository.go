package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tumaini/sponsorship/pkg/logger"
	"go.uber.org/zap"
)

// Repository handles risk score and fraud signal data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new risk repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetOrInit retrieves a sponsor's risk score row, creating it at (0, normal)
// on first read. The unique constraint on sponsor_id makes concurrent first
// reads converge on a single row.
func (r *Repository) GetOrInit(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sponsor_risk_scores (sponsor_id, score, level, last_updated)
		VALUES ($1, 0, $2, NOW())
		ON CONFLICT (sponsor_id) DO NOTHING
	`, sponsorID, LevelNormal)
	if err != nil {
		return nil, fmt.Errorf("failed to init risk score: %w", err)
	}

	return r.getScore(ctx, sponsorID)
}

func (r *Repository) getScore(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error) {
	var score SponsorRiskScore
	err := r.db.QueryRow(ctx, `
		SELECT sponsor_id, score, level, last_updated
		FROM sponsor_risk_scores
		WHERE sponsor_id = $1
	`, sponsorID).Scan(&score.SponsorID, &score.Score, &score.Level, &score.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to get risk score: %w", err)
	}
	return &score, nil
}

// AddPoints adjusts a sponsor's score by delta (which may be negative),
// flooring at zero and recomputing the level. The row lock serializes
// concurrent score updates for the same sponsor.
func (r *Repository) AddPoints(ctx context.Context, sponsorID uuid.UUID, delta int) (*SponsorRiskScore, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sponsor_risk_scores (sponsor_id, score, level, last_updated)
		VALUES ($1, 0, $2, NOW())
		ON CONFLICT (sponsor_id) DO NOTHING
	`, sponsorID, LevelNormal)
	if err != nil {
		return nil, fmt.Errorf("failed to init risk score: %w", err)
	}

	var current int
	err = tx.QueryRow(ctx, `
		SELECT score FROM sponsor_risk_scores WHERE sponsor_id = $1 FOR UPDATE
	`, sponsorID).Scan(&current)
	if err != nil {
		return nil, fmt.Errorf("failed to lock risk score: %w", err)
	}

	newScore := current + delta
	if newScore < 0 {
		newScore = 0
	}
	level := LevelForScore(newScore)
	now := time.Now()

	_, err = tx.Exec(ctx, `
		UPDATE sponsor_risk_scores
		SET score = $2, level = $3, last_updated = $4
		WHERE sponsor_id = $1
	`, sponsorID, newScore, level, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update risk score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &SponsorRiskScore{SponsorID: sponsorID, Score: newScore, Level: level, LastUpdated: now}, nil
}

// Recalculate overwrites the score with the all-time sum of the sponsor's
// signal weights. Idempotent: running it twice with no new signals in
// between yields the same score both times.
func (r *Repository) Recalculate(ctx context.Context, sponsorID uuid.UUID) (*SponsorRiskScore, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sum int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(weight), 0) FROM fraud_signals WHERE sponsor_id = $1
	`, sponsorID).Scan(&sum)
	if err != nil {
		return nil, fmt.Errorf("failed to sum signal weights: %w", err)
	}

	level := LevelForScore(sum)
	now := time.Now()

	_, err = tx.Exec(ctx, `
		INSERT INTO sponsor_risk_scores (sponsor_id, score, level, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sponsor_id) DO UPDATE SET
			score = EXCLUDED.score,
			level = EXCLUDED.level,
			last_updated = EXCLUDED.last_updated
	`, sponsorID, sum, level, now)
	if err != nil {
		return nil, fmt.Errorf("failed to write recalculated score: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &SponsorRiskScore{SponsorID: sponsorID, Score: sum, Level: level, LastUpdated: now}, nil
}

// ApplyDecay reduces the score of every sponsor that has a positive score,
// has not been updated within lookbackDays, and produced no new signals in
// that window. The reduction is ceil(score * decayPercent / 100), floored at
// zero. Returns the number of sponsors decayed; per-sponsor failures are
// logged and skipped so one bad row does not abort the batch.
func (r *Repository) ApplyDecay(ctx context.Context, lookbackDays, decayPercent int) (int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT sponsor_id, score
		FROM sponsor_risk_scores
		WHERE score > 0
		  AND last_updated < NOW() - ($1 * INTERVAL '1 day')
		  AND NOT EXISTS (
			SELECT 1 FROM fraud_signals s
			WHERE s.sponsor_id = sponsor_risk_scores.sponsor_id
			  AND s.created_at >= NOW() - ($1 * INTERVAL '1 day')
		  )
	`, lookbackDays)
	if err != nil {
		return 0, fmt.Errorf("failed to query decay candidates: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		sponsorID uuid.UUID
		score     int
	}
	candidates := make([]candidate, 0)
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.sponsorID, &c.score); err != nil {
			return 0, fmt.Errorf("failed to scan decay candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read decay candidates: %w", err)
	}

	decayed := 0
	for _, c := range candidates {
		newScore := DecayedScore(c.score, decayPercent)

		_, err := r.db.Exec(ctx, `
			UPDATE sponsor_risk_scores
			SET score = $2, level = $3, last_updated = NOW()
			WHERE sponsor_id = $1
		`, c.sponsorID, newScore, LevelForScore(newScore))
		if err != nil {
			logger.Error("decay update failed",
				zap.String("sponsor_id", c.sponsorID.String()),
				zap.Error(err))
			continue
		}
		decayed++
	}

	return decayed, nil
}

// InsertSignal appends a fraud signal. Signals are immutable once written.
func (r *Repository) InsertSignal(ctx context.Context, signal *FraudSignal) error {
	metadataJSON, err := json.Marshal(signal.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal signal metadata: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO fraud_signals (
			id, sponsor_id, donation_id, kind, source, weight,
			description, created_by, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		signal.ID,
		signal.SponsorID,
		signal.DonationID,
		signal.Kind,
		signal.Source,
		signal.Weight,
		signal.Description,
		signal.CreatedBy,
		metadataJSON,
		signal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fraud signal: %w", err)
	}
	return nil
}

// ListSignals returns a sponsor's signals, newest first, with total count
func (r *Repository) ListSignals(ctx context.Context, sponsorID uuid.UUID, limit, offset int) ([]*FraudSignal, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM fraud_signals WHERE sponsor_id = $1
	`, sponsorID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count fraud signals: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, sponsor_id, donation_id, kind, source, weight,
		       description, created_by, metadata, created_at
		FROM fraud_signals
		WHERE sponsor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, sponsorID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query fraud signals: %w", err)
	}
	defer rows.Close()

	signals := make([]*FraudSignal, 0)
	for rows.Next() {
		var signal FraudSignal
		var metadataJSON []byte

		err := rows.Scan(
			&signal.ID,
			&signal.SponsorID,
			&signal.DonationID,
			&signal.Kind,
			&signal.Source,
			&signal.Weight,
			&signal.Description,
			&signal.CreatedBy,
			&metadataJSON,
			&signal.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan fraud signal: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &signal.Metadata); err != nil {
				signal.Metadata = make(map[string]interface{})
			}
		}

		signals = append(signals, &signal)
	}

	return signals, total, nil
}
