package detection

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/internal/risk"
)

// Detection thresholds. All comparisons are inclusive.
const (
	burstFailures    = 3  // failed payments in 24h
	patternFailures  = 5  // failed payments in 7d
	velocityChildren = 5  // distinct children in 7d
	spikeMultiplier  = 10 // times the 90d successful average
	microCount       = 5  // donations in [1,10] in 7d
	botAttempts      = 10 // attempts in 5min
	oddHourCount     = 10 // donations with local hour in [2,5] in 30d
)

// DetectPaymentAbuse evaluates the failed-payment and payment-ref rules
func DetectPaymentAbuse(snap *HistorySnapshot) []DetectedSignal {
	var signals []DetectedSignal

	if snap.FailedLast24h >= burstFailures {
		signals = append(signals, DetectedSignal{
			Kind:        risk.SignalPaymentFailureBurst,
			Weight:      risk.SignalWeights[risk.SignalPaymentFailureBurst],
			Description: fmt.Sprintf("%d failed payments within 24 hours", snap.FailedLast24h),
		})
	}

	if snap.FailedLast7d >= patternFailures {
		signals = append(signals, DetectedSignal{
			Kind:        risk.SignalPaymentFailurePattern,
			Weight:      risk.SignalWeights[risk.SignalPaymentFailurePattern],
			Description: fmt.Sprintf("%d failed payments within 7 days", snap.FailedLast7d),
		})
	}

	if snap.PaymentRefSponsors > 1 {
		signals = append(signals, DetectedSignal{
			Kind:        risk.SignalPaymentRefReuse,
			Weight:      risk.SignalWeights[risk.SignalPaymentRefReuse],
			Description: fmt.Sprintf("payment reference shared by %d distinct sponsors", snap.PaymentRefSponsors),
		})
	}

	return signals
}

// DetectAmountAnomaly evaluates the amount-spike and micro-donation rules.
// The spike rule only fires when a positive 90-day successful average exists.
func DetectAmountAnomaly(snap *HistorySnapshot, amount decimal.Decimal) []DetectedSignal {
	var signals []DetectedSignal

	if snap.AvgSuccess90d.IsPositive() {
		threshold := snap.AvgSuccess90d.Mul(decimal.NewFromInt(spikeMultiplier))
		if amount.GreaterThanOrEqual(threshold) {
			signals = append(signals, DetectedSignal{
				Kind:   risk.SignalAmountSpike,
				Weight: risk.SignalWeights[risk.SignalAmountSpike],
				Description: fmt.Sprintf("amount %s is at least %dx the 90-day average %s",
					amount.StringFixed(2), spikeMultiplier, snap.AvgSuccess90d.StringFixed(2)),
			})
		}
	}

	if snap.MicroDonations7d >= microCount {
		signals = append(signals, DetectedSignal{
			Kind:        risk.SignalMicroDonationTesting,
			Weight:      risk.SignalWeights[risk.SignalMicroDonationTesting],
			Description: fmt.Sprintf("%d micro donations within 7 days", snap.MicroDonations7d),
		})
	}

	return signals
}

// DetectBehaviorVelocity evaluates the multi-child, bot-velocity and
// odd-hour rules
func DetectBehaviorVelocity(snap *HistorySnapshot) []DetectedSignal {
	var signals []DetectedSignal

	if snap.DistinctChildren7d >= velocityChildren {
		signals = append(signals, DetectedSignal{
			Kind:        risk.SignalMultiChildVelocity,
			Weight:      risk.SignalWeights[risk.SignalMultiChildVelocity],
			Description: fmt.Sprintf("donated to %d distinct children within 7 days", snap.DistinctChildren7d),
		})
	}

	if snap.AttemptsLast5m >= botAttempts {
		signals = append(signals, DetectedSignal{
			Kind:        risk.SignalBotVelocity,
			Weight:      risk.SignalWeights[risk.SignalBotVelocity],
			Description: fmt.Sprintf("%d donation attempts within 5 minutes", snap.AttemptsLast5m),
		})
	}

	if snap.OddHourDonations30d >= oddHourCount {
		signals = append(signals, DetectedSignal{
			Kind:        risk.SignalOddHourPattern,
			Weight:      risk.SignalWeights[risk.SignalOddHourPattern],
			Description: fmt.Sprintf("%d donations between 02:00 and 05:59 within 30 days", snap.OddHourDonations30d),
		})
	}

	return signals
}

// RunDetectors runs every rule family over the snapshot. Rules fire
// independently; weights are additive and never deduplicated within a pass.
func RunDetectors(snap *HistorySnapshot, amount decimal.Decimal) []DetectedSignal {
	var signals []DetectedSignal
	signals = append(signals, DetectPaymentAbuse(snap)...)
	signals = append(signals, DetectAmountAnomaly(snap, amount)...)
	signals = append(signals, DetectBehaviorVelocity(snap)...)
	return signals
}
