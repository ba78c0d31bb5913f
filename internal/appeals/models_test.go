package appeals

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAcceptedOutcome(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		newScore  int
		autoClear bool
	}{
		{"restricted sponsor drops below threshold", 45, 15, true},
		{"high score stays above threshold", 60, 30, false},
		{"exactly at threshold does not clear", 50, 20, false},
		{"one under threshold clears", 49, 19, true},
		{"floored at zero", 25, 0, true},
		{"zero score stays zero", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newScore, autoClear := acceptedOutcome(tt.score)
			assert.Equal(t, tt.newScore, newScore)
			assert.Equal(t, tt.autoClear, autoClear)
		})
	}
}

func TestReviewNote(t *testing.T) {
	appealID := uuid.MustParse("3f1c2a44-9c1e-4f7b-8a10-2d9a6f5e0b11")

	note := reviewNote(appealID, DecisionAccepted, "documents check out")
	assert.Equal(t, "appeal 3f1c2a44-9c1e-4f7b-8a10-2d9a6f5e0b11 accepted: documents check out", note)

	note = reviewNote(appealID, DecisionRejected, "evidence unconvincing")
	assert.Contains(t, note, "rejected: evidence unconvincing")
}
