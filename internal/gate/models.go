package gate

import (
	"github.com/shopspring/decimal"
)

// GateStatus is the enforcement status reported to the donation flow.
// It mirrors the case status, with "normal" standing in for no case or a
// cleared case.
type GateStatus string

const (
	StatusNormal      GateStatus = "normal"
	StatusUnderReview GateStatus = "under_review"
	StatusRestricted  GateStatus = "restricted"
	StatusFrozen      GateStatus = "frozen"
	StatusBlocked     GateStatus = "blocked"
)

// Decision is the gate's answer for one sponsor. It is always produced;
// absence of a case is a handled state, never an error.
type Decision struct {
	Allowed      bool             `json:"allowed"`
	Status       GateStatus       `json:"status"`
	MonthlyLimit *decimal.Decimal `json:"monthly_limit,omitempty"`
	Remaining    *decimal.Decimal `json:"remaining,omitempty"`
	Message      string           `json:"message,omitempty"`
}
