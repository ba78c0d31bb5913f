package risk

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// SignalKind identifies the rule or report that produced a fraud signal
type SignalKind string

const (
	SignalPaymentFailureBurst   SignalKind = "payment_failure_burst"
	SignalPaymentFailurePattern SignalKind = "payment_failure_pattern"
	SignalPaymentRefReuse       SignalKind = "payment_ref_reuse"
	SignalMultiChildVelocity    SignalKind = "multi_child_velocity"
	SignalAmountSpike           SignalKind = "amount_spike"
	SignalMicroDonationTesting  SignalKind = "micro_donation_testing"
	SignalBotVelocity           SignalKind = "bot_velocity"
	SignalOddHourPattern        SignalKind = "odd_hour_pattern"
	SignalStaffReport           SignalKind = "staff_report"
)

// SignalWeights maps each signal kind to the points it adds to a sponsor's
// risk score. Weights are snapshotted onto signals at creation time and never
// recomputed, so historical scores survive changes to this table.
var SignalWeights = map[SignalKind]int{
	SignalPaymentFailureBurst:   10,
	SignalPaymentFailurePattern: 15,
	SignalPaymentRefReuse:       30,
	SignalMultiChildVelocity:    20,
	SignalAmountSpike:           10,
	SignalMicroDonationTesting:  15,
	SignalBotVelocity:           20,
	SignalOddHourPattern:        8,
	SignalStaffReport:           20,
}

// SignalSource distinguishes automated detections from staff reports
type SignalSource string

const (
	SourceSystem SignalSource = "system"
	SourceStaff  SignalSource = "staff"
)

// RiskLevel is the banded classification of a sponsor's current score
type RiskLevel string

const (
	LevelNormal   RiskLevel = "normal"
	LevelWatch    RiskLevel = "watch"
	LevelReview   RiskLevel = "review"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
)

// LevelForScore maps a score to its risk level. Bands are contiguous and
// exhaustive over non-negative integers.
func LevelForScore(score int) RiskLevel {
	switch {
	case score < 20:
		return LevelNormal
	case score < 40:
		return LevelWatch
	case score < 60:
		return LevelReview
	case score < 80:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// DecayedScore returns the score after one decay pass: a reduction of
// ceil(score * percent / 100), floored at zero. A positive score always
// shrinks, so repeated quiet periods walk any score back to zero.
func DecayedScore(score, percent int) int {
	reduction := int(math.Ceil(float64(score) * float64(percent) / 100))
	newScore := score - reduction
	if newScore < 0 {
		newScore = 0
	}
	return newScore
}

// SponsorRiskScore is the per-sponsor accumulator. Created lazily at
// (0, normal) on first read; the score never goes negative and the stored
// level always agrees with LevelForScore(score).
type SponsorRiskScore struct {
	SponsorID   uuid.UUID `json:"sponsor_id" db:"sponsor_id"`
	Score       int       `json:"score" db:"score"`
	Level       RiskLevel `json:"level" db:"level"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"`
}

// FraudSignal is one append-only unit of evidence against a sponsor.
// Immutable once written; the sum of a sponsor's signal weights can always
// regenerate the score via Recalculate.
type FraudSignal struct {
	ID          uuid.UUID              `json:"id" db:"id"`
	SponsorID   uuid.UUID              `json:"sponsor_id" db:"sponsor_id"`
	DonationID  *uuid.UUID             `json:"donation_id,omitempty" db:"donation_id"`
	Kind        SignalKind             `json:"kind" db:"kind"`
	Source      SignalSource           `json:"source" db:"source"`
	Weight      int                    `json:"weight" db:"weight"`
	Description string                 `json:"description" db:"description"`
	CreatedBy   *uuid.UUID             `json:"created_by,omitempty" db:"created_by"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}

// ReportSeverity grades a staff-submitted fraud report
type ReportSeverity string

const (
	SeverityLow      ReportSeverity = "low"
	SeverityMedium   ReportSeverity = "medium"
	SeverityHigh     ReportSeverity = "high"
	SeverityCritical ReportSeverity = "critical"
)

// staffReportBaseWeight is the base weight scaled by the severity multiplier.
const staffReportBaseWeight = 20

var severityMultipliers = map[ReportSeverity]float64{
	SeverityLow:      0.5,
	SeverityMedium:   1.0,
	SeverityHigh:     1.5,
	SeverityCritical: 2.0,
}

// ValidSeverity reports whether s is a recognized severity grade
func ValidSeverity(s ReportSeverity) bool {
	_, ok := severityMultipliers[s]
	return ok
}

// StaffReportWeight computes the weight of a staff report from its severity,
// the number of abuse categories cited and the number of related donations.
// Kept as a pure function so the arithmetic is testable without persistence.
func StaffReportWeight(severity ReportSeverity, categoryCount, donationCount int) int {
	mult, ok := severityMultipliers[severity]
	if !ok {
		mult = 1.0
	}
	return int(math.Round(mult*staffReportBaseWeight)) + categoryCount*3 + donationCount*2
}

// StaffReportDetails carries the structured portion of a staff report
type StaffReportDetails struct {
	Severity    ReportSeverity `json:"severity" binding:"required"`
	Categories  []string       `json:"categories"`
	DonationIDs []uuid.UUID    `json:"donation_ids"`
}
