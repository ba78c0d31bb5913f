package sponsors

import (
	"time"

	"github.com/google/uuid"
)

// Sponsor is a donor account. The flagged fields are mutated only by fraud
// case actions.
type Sponsor struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Email      string     `json:"email" db:"email"`
	FullName   string     `json:"full_name" db:"full_name"`
	Flagged    bool       `json:"flagged" db:"flagged"`
	FlagReason *string    `json:"flag_reason,omitempty" db:"flag_reason"`
	FlaggedAt  *time.Time `json:"flagged_at,omitempty" db:"flagged_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// FlagStatus is the sponsor-facing view of their enforcement state
type FlagStatus struct {
	SponsorID  uuid.UUID  `json:"sponsor_id"`
	Flagged    bool       `json:"flagged"`
	FlagReason *string    `json:"flag_reason,omitempty"`
	FlaggedAt  *time.Time `json:"flagged_at,omitempty"`
}
