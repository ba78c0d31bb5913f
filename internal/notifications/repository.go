package notifications

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles the sent-notification log
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new notification repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordSent inserts the record; the unique index makes concurrent duplicates
// lose the race cleanly
func (r *Repository) RecordSent(ctx context.Context, n *SentNotification) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO notifications_sent (id, sponsor_id, child_id, notification_type, event_key, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sponsor_id, child_id, notification_type, event_key) DO NOTHING
	`, n.ID, n.SponsorID, n.ChildID, n.NotificationType, n.EventKey, n.SentAt)
	if err != nil {
		return false, fmt.Errorf("failed to record sent notification: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
