package run

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Throttle computes the randomized pause inserted between categories. It is
// a fixed brake on bursty remote load, not a correctness mechanism.
type Throttle struct {
	Base   time.Duration
	Max    time.Duration
	Growth float64
	Jitter float64
}

// Delay returns the pause after the n-th completed category (1-based):
// geometric growth capped at Max, then jittered down by up to Jitter.
func (t Throttle) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	wait := float64(t.Base) * math.Pow(t.Growth, float64(n-1))
	if wait > float64(t.Max) {
		wait = float64(t.Max)
	}
	span := time.Duration(wait * t.Jitter)
	return time.Duration(wait) - randomJitter(span)
}

// Wait sleeps for Delay(n), returning early if the context finishes.
func (t Throttle) Wait(ctx context.Context, n int) error {
	select {
	case <-time.After(t.Delay(n)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	v, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(v.Int64())
}
