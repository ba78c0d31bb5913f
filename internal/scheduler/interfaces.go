package scheduler

import "context"

// DecayService applies time-based risk score decay. Implemented by the risk
// service; wrapped in an interface so the worker can be tested with a mock.
type DecayService interface {
	ApplyDecay(ctx context.Context, lookbackDays, decayPercent int) (int, error)
}
