package appeals

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppealStatus is the lifecycle state of an appeal
type AppealStatus string

const (
	StatusPending  AppealStatus = "pending"
	StatusAccepted AppealStatus = "accepted"
	StatusRejected AppealStatus = "rejected"
)

// AppealDecision is an admin's verdict on a pending appeal
type AppealDecision string

const (
	DecisionAccepted AppealDecision = "accepted"
	DecisionRejected AppealDecision = "rejected"
)

// acceptedScoreReduction is subtracted from the sponsor's risk score when an
// appeal is accepted, floored at zero.
const acceptedScoreReduction = 30

// autoClearThreshold: an accepted appeal that brings the score below this
// automatically clears the case.
const autoClearThreshold = 20

// acceptedOutcome returns the sponsor's score after an accepted appeal and
// whether that score auto-clears the case.
func acceptedOutcome(score int) (int, bool) {
	newScore := score - acceptedScoreReduction
	if newScore < 0 {
		newScore = 0
	}
	return newScore, newScore < autoClearThreshold
}

// reviewNote is the single audit note every appeal decision appends to the case
func reviewNote(appealID uuid.UUID, decision AppealDecision, justification string) string {
	return fmt.Sprintf("appeal %s %s: %s", appealID, decision, justification)
}

// FraudAppeal is a sponsor's dispute against a fraud case. At most one
// pending appeal may exist per case at any time.
type FraudAppeal struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	FraudCaseID uuid.UUID    `json:"fraud_case_id" db:"fraud_case_id"`
	SponsorID   uuid.UUID    `json:"sponsor_id" db:"sponsor_id"`
	AppealText  string       `json:"appeal_text" db:"appeal_text"`
	Attachment  *string      `json:"attachment,omitempty" db:"attachment"`
	Status      AppealStatus `json:"status" db:"status"`
	ReviewedBy  *uuid.UUID   `json:"reviewed_by,omitempty" db:"reviewed_by"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// ReviewParams carries one admin appeal decision through the review transaction
type ReviewParams struct {
	AppealID      uuid.UUID
	AdminID       uuid.UUID
	Decision      AppealDecision
	Justification string
}
