package batch

import (
	"time"

	"github.com/zulandar/sentimeter/internal/config"
	"github.com/zulandar/sentimeter/internal/oracle"
)

// BackoffPolicy decides how long the runner waits before the next item.
// attempt is the number of consecutive failed items so far (0 after a
// success); lastErr is the error of the item just processed, or nil.
type BackoffPolicy interface {
	NextDelay(attempt int, lastErr error) time.Duration
}

// FixedDelay waits the same duration between every item.
type FixedDelay time.Duration

// NextDelay implements BackoffPolicy.
func (d FixedDelay) NextDelay(int, error) time.Duration {
	return time.Duration(d)
}

// ExponentialBackoff waits Base after successes and grows the delay by
// Multiplier for each consecutive failure, capped at Max. A retry hint from
// a rate-limited provider is honored when it is longer.
type ExponentialBackoff struct {
	Base       time.Duration
	Max        time.Duration
	Multiplier float64
}

// NextDelay implements BackoffPolicy.
func (b ExponentialBackoff) NextDelay(attempt int, lastErr error) time.Duration {
	if lastErr == nil || attempt <= 0 {
		return b.Base
	}

	mult := b.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(b.Base)
	for i := 0; i < attempt; i++ {
		d *= mult
		if b.Max > 0 && d >= float64(b.Max) {
			d = float64(b.Max)
			break
		}
	}
	delay := time.Duration(d)
	if hint := oracle.RetryAfter(lastErr); hint > delay {
		delay = hint
	}
	if b.Max > 0 && delay > b.Max {
		delay = b.Max
	}
	return delay
}

// PolicyFromConfig builds the configured backoff policy.
func PolicyFromConfig(cfg config.BatchConfig) BackoffPolicy {
	if cfg.Backoff == config.BackoffExponential {
		return ExponentialBackoff{Base: cfg.Delay, Max: cfg.MaxDelay, Multiplier: cfg.Multiplier}
	}
	return FixedDelay(cfg.Delay)
}
