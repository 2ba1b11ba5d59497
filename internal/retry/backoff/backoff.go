// Package backoff provides delay strategies for retry.
package backoff

import (
	"math"
	"time"
)

// Strategy provides the amount of time to wait before trying again.
// Note: attempts starts at 1.
type Strategy func(attempts uint) time.Duration

// Constant returns a strategy that always returns the provided duration.
func Constant(interval time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		return interval
	}
}

// Exponential returns a strategy that grows exponentially with the number
// of attempts.
//
// delay = baseDelay * base^(attempts - 1)
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		if delay := baseDelay * time.Duration(math.Pow(base, float64(attempts-1))); delay >= 0 {
			return delay
		}

		return math.MaxInt64
	}
}

// BinaryExponential returns an Exponential strategy with a base of 2.0,
// doubling the delay on every attempt.
//
// delay = baseDelay * 2^(attempts - 1)
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}
