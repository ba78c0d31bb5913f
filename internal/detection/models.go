package detection

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/risk"
)

// Trigger is the donation event that starts a detection pass
type Trigger struct {
	DonationID *uuid.UUID
	PaymentRef string
	Amount     decimal.Decimal
}

// HistorySnapshot is a read-only view of a sponsor's recent donation history.
// The repository builds it in one pass; the detectors are pure functions over
// it so every rule can be tested without a database.
type HistorySnapshot struct {
	FailedLast24h       int
	FailedLast7d        int
	PaymentRefSponsors  int // distinct sponsors sharing the trigger's payment ref
	DistinctChildren7d  int
	AvgSuccess90d       decimal.Decimal // zero when no successful donations exist
	MicroDonations7d    int             // donations with amount in [1,10]
	AttemptsLast5m      int
	OddHourDonations30d int // donations with local hour in [2,5]
}

// DetectedSignal is one rule hit, not yet persisted
type DetectedSignal struct {
	Kind        risk.SignalKind
	Weight      int
	Description string
}
