package donations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationStatus is the payment lifecycle state of a donation
type DonationStatus string

const (
	StatusPending DonationStatus = "pending"
	StatusSuccess DonationStatus = "success"
	StatusFailed  DonationStatus = "failed"
)

// ValidFinalStatus reports whether s is a status a gateway callback may set
func ValidFinalStatus(s DonationStatus) bool {
	return s == StatusSuccess || s == StatusFailed
}

// Donation is one sponsorship payment from a sponsor to a child
type Donation struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	SponsorID  uuid.UUID       `json:"sponsor_id" db:"sponsor_id"`
	ChildID    uuid.UUID       `json:"child_id" db:"child_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Status     DonationStatus  `json:"status" db:"status"`
	PaymentRef string          `json:"payment_ref" db:"payment_ref"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}
