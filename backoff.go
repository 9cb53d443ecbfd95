package qctl

import (
	"math"
	"time"
)

// Backoff computes the delay before a failed job becomes eligible again,
// equal to base^attempts seconds (spec's "backoff_base ^ attempts").
//
// Unlike a jittered exponential backoff, this is deliberately
// deterministic: retry scheduling must be reproducible for the
// monotonicity property (the k-th retry's RunAt >= prior RunAt +
// base^k) to be testable without tolerance windows.
func Backoff(base int, attempts uint32) time.Duration {
	if base < 2 {
		base = 2
	}
	seconds := math.Pow(float64(base), float64(attempts))
	return time.Duration(seconds) * time.Second
}
