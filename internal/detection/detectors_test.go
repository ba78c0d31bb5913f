package detection

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tumaini/sponsorship/internal/risk"
)

func TestDetectPaymentAbuseBurst(t *testing.T) {
	snap := &HistorySnapshot{FailedLast24h: 3}

	signals := DetectPaymentAbuse(snap)
	require.Len(t, signals, 1)
	assert.Equal(t, risk.SignalPaymentFailureBurst, signals[0].Kind)
	assert.Equal(t, 10, signals[0].Weight)
}

func TestDetectPaymentAbuseBelowThresholds(t *testing.T) {
	snap := &HistorySnapshot{FailedLast24h: 2, FailedLast7d: 4, PaymentRefSponsors: 1}
	assert.Empty(t, DetectPaymentAbuse(snap))
}

func TestDetectPaymentAbusePatternAndBurstBothFire(t *testing.T) {
	snap := &HistorySnapshot{FailedLast24h: 3, FailedLast7d: 5}

	signals := DetectPaymentAbuse(snap)
	require.Len(t, signals, 2)
	assert.Equal(t, risk.SignalPaymentFailureBurst, signals[0].Kind)
	assert.Equal(t, risk.SignalPaymentFailurePattern, signals[1].Kind)
}

func TestDetectPaymentAbuseRefReuse(t *testing.T) {
	snap := &HistorySnapshot{PaymentRefSponsors: 3}

	signals := DetectPaymentAbuse(snap)
	require.Len(t, signals, 1)
	assert.Equal(t, risk.SignalPaymentRefReuse, signals[0].Kind)
	assert.Equal(t, 30, signals[0].Weight)
	assert.Contains(t, signals[0].Description, "3 distinct sponsors")
}

func TestDetectAmountAnomalySpike(t *testing.T) {
	snap := &HistorySnapshot{AvgSuccess90d: decimal.NewFromInt(50)}

	signals := DetectAmountAnomaly(snap, decimal.NewFromInt(500))
	require.Len(t, signals, 1)
	assert.Equal(t, risk.SignalAmountSpike, signals[0].Kind)
	assert.Equal(t, 10, signals[0].Weight)

	// just below 10x does not fire
	assert.Empty(t, DetectAmountAnomaly(snap, decimal.RequireFromString("499.99")))
}

func TestDetectAmountAnomalySpikeNeedsAverage(t *testing.T) {
	// No successful history means no baseline, the spike rule stays silent.
	snap := &HistorySnapshot{AvgSuccess90d: decimal.Zero}
	assert.Empty(t, DetectAmountAnomaly(snap, decimal.NewFromInt(100000)))
}

func TestDetectAmountAnomalyMicroDonations(t *testing.T) {
	snap := &HistorySnapshot{MicroDonations7d: 5}

	signals := DetectAmountAnomaly(snap, decimal.NewFromInt(5))
	require.Len(t, signals, 1)
	assert.Equal(t, risk.SignalMicroDonationTesting, signals[0].Kind)
	assert.Equal(t, 15, signals[0].Weight)
}

func TestDetectBehaviorVelocity(t *testing.T) {
	tests := []struct {
		name string
		snap HistorySnapshot
		kind risk.SignalKind
	}{
		{"multi child", HistorySnapshot{DistinctChildren7d: 5}, risk.SignalMultiChildVelocity},
		{"bot attempts", HistorySnapshot{AttemptsLast5m: 10}, risk.SignalBotVelocity},
		{"odd hours", HistorySnapshot{OddHourDonations30d: 10}, risk.SignalOddHourPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := DetectBehaviorVelocity(&tt.snap)
			require.Len(t, signals, 1)
			assert.Equal(t, tt.kind, signals[0].Kind)
			assert.Equal(t, risk.SignalWeights[tt.kind], signals[0].Weight)
		})
	}
}

func TestDetectBehaviorVelocityBelowThresholds(t *testing.T) {
	snap := &HistorySnapshot{DistinctChildren7d: 4, AttemptsLast5m: 9, OddHourDonations30d: 9}
	assert.Empty(t, DetectBehaviorVelocity(snap))
}

func TestRunDetectorsAllRulesFire(t *testing.T) {
	snap := &HistorySnapshot{
		FailedLast24h:       3,
		FailedLast7d:        5,
		PaymentRefSponsors:  2,
		DistinctChildren7d:  5,
		AvgSuccess90d:       decimal.NewFromInt(10),
		MicroDonations7d:    5,
		AttemptsLast5m:      10,
		OddHourDonations30d: 10,
	}

	signals := RunDetectors(snap, decimal.NewFromInt(100))
	require.Len(t, signals, 8)

	total := 0
	for _, s := range signals {
		total += s.Weight
	}
	assert.Equal(t, 10+15+30+20+10+15+20+8, total)
}

func TestRunDetectorsQuietHistory(t *testing.T) {
	assert.Empty(t, RunDetectors(&HistorySnapshot{}, decimal.NewFromInt(50)))
}
