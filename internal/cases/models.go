package cases

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CaseStatus is the enforcement state of a fraud case
type CaseStatus string

const (
	StatusUnderReview CaseStatus = "under_review"
	StatusRestricted  CaseStatus = "restricted"
	StatusFrozen      CaseStatus = "frozen"
	StatusBlocked     CaseStatus = "blocked"
	StatusCleared     CaseStatus = "cleared"
)

// CaseAction is an admin decision on a case. Transitions are not
// one-directional: an admin may re-decide a case from any non-cleared state
// into any other state.
type CaseAction string

const (
	ActionClear    CaseAction = "clear"
	ActionRestrict CaseAction = "restrict"
	ActionFreeze   CaseAction = "freeze"
	ActionBlock    CaseAction = "block"
)

// DefaultRestrictedLimit is the monthly donation cap applied by the
// restrict action when no explicit limit is configured.
var DefaultRestrictedLimit = decimal.RequireFromString("3000.00")

// clearScoreReduction is subtracted from the sponsor's risk score by the
// clear action, floored at zero.
const clearScoreReduction = 20

// StatusForAction maps an admin action to the resulting case status
func StatusForAction(a CaseAction) (CaseStatus, bool) {
	switch a {
	case ActionClear:
		return StatusCleared, true
	case ActionRestrict:
		return StatusRestricted, true
	case ActionFreeze:
		return StatusFrozen, true
	case ActionBlock:
		return StatusBlocked, true
	default:
		return "", false
	}
}

// LimitForAction maps an admin action to the monthly donation limit it
// imposes. Nil means unlimited.
func LimitForAction(a CaseAction, restrictedLimit decimal.Decimal) *decimal.Decimal {
	switch a {
	case ActionClear:
		return nil
	case ActionRestrict:
		limit := restrictedLimit
		return &limit
	default: // freeze, block
		zero := decimal.Zero
		return &zero
	}
}

// FraudCase is one enforcement episode against a sponsor
type FraudCase struct {
	ID                   uuid.UUID        `json:"id" db:"id"`
	SponsorID            uuid.UUID        `json:"sponsor_id" db:"sponsor_id"`
	OpenedBy             *uuid.UUID       `json:"opened_by,omitempty" db:"opened_by"`
	CurrentRiskScore     int              `json:"current_risk_score" db:"current_risk_score"`
	Summary              string           `json:"summary" db:"summary"`
	Status               CaseStatus       `json:"status" db:"status"`
	MonthlyDonationLimit *decimal.Decimal `json:"monthly_donation_limit,omitempty" db:"monthly_donation_limit"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

// FraudCaseNote is one entry in a case's append-only audit trail. Every
// status-changing action and every appeal decision writes exactly one note.
type FraudCaseNote struct {
	ID          uuid.UUID `json:"id" db:"id"`
	FraudCaseID uuid.UUID `json:"fraud_case_id" db:"fraud_case_id"`
	AdminID     uuid.UUID `json:"admin_id" db:"admin_id"`
	Note        string    `json:"note" db:"note"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ActionParams carries one admin decision through the action transaction
type ActionParams struct {
	SponsorID       uuid.UUID
	AdminID         uuid.UUID
	Action          CaseAction
	Justification   string
	RestrictedLimit decimal.Decimal
}

// flagReasonForAction is the human-readable reason stamped on the sponsor
// record by non-clear actions.
func flagReasonForAction(a CaseAction) string {
	switch a {
	case ActionRestrict:
		return "account restricted: monthly donations capped pending fraud review"
	case ActionFreeze:
		return "account frozen: donations suspended pending fraud review"
	case ActionBlock:
		return "account blocked for fraudulent activity"
	default:
		return ""
	}
}

// actionEffects is the deterministic outcome of one admin decision: the
// case's new status and monthly limit, the single audit note the decision
// writes, and the sponsor-side changes.
type actionEffects struct {
	Status     CaseStatus
	Limit      *decimal.Decimal
	Note       string
	NewScore   int
	Unflag     bool
	FlagReason string
}

// effectsForAction computes everything an admin action changes before any
// row is touched. Clear unflags the sponsor and reduces the score by
// clearScoreReduction, floored at zero; other actions flag the sponsor and
// leave the score alone.
func effectsForAction(a CaseAction, score int, restrictedLimit decimal.Decimal, justification string) (actionEffects, error) {
	status, ok := StatusForAction(a)
	if !ok {
		return actionEffects{}, fmt.Errorf("unknown case action %q", a)
	}
	limit := LimitForAction(a, restrictedLimit)

	limitText := "unlimited"
	if limit != nil {
		limitText = limit.StringFixed(2)
	}

	eff := actionEffects{
		Status:   status,
		Limit:    limit,
		Note:     fmt.Sprintf("action=%s monthly_limit=%s justification: %s", a, limitText, justification),
		NewScore: score,
	}
	if a == ActionClear {
		eff.Unflag = true
		eff.NewScore = score - clearScoreReduction
		if eff.NewScore < 0 {
			eff.NewScore = 0
		}
	} else {
		eff.FlagReason = flagReasonForAction(a)
	}
	return eff, nil
}
