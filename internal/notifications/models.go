package notifications

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType labels the kind of sponsor email being deduplicated
type NotificationType string

const (
	TypeAchievement NotificationType = "achievement"
	TypeReport      NotificationType = "report"
	TypeEvent       NotificationType = "event"
)

// SentNotification records one delivered notification. The unique index over
// (sponsor_id, child_id, notification_type, event_key) is the durable dedup
// guard.
type SentNotification struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	SponsorID        uuid.UUID        `json:"sponsor_id" db:"sponsor_id"`
	ChildID          uuid.UUID        `json:"child_id" db:"child_id"`
	NotificationType NotificationType `json:"notification_type" db:"notification_type"`
	EventKey         string           `json:"event_key" db:"event_key"`
	SentAt           time.Time        `json:"sent_at" db:"sent_at"`
}
