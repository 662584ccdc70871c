package fetch

import (
	"math"
	"time"

	"github.com/dmorenoc/cronograma/internal/findings"
)

// Policy owns the per-attempt timeout ladder and decides which failure
// kinds earn another attempt. It is a value type so tests can build
// alternates inline.
type Policy struct {
	MaxAttempts int
	BaseTimeout time.Duration
	Multiplier  float64
}

// DefaultPolicy mirrors the production ladder: three attempts, ten second
// base timeout, growing by half each retry.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseTimeout: 10 * time.Second,
		Multiplier:  1.5,
	}
}

// AttemptTimeout returns the timeout for the given zero-based attempt.
func (p Policy) AttemptTimeout(attempt int) time.Duration {
	d := float64(p.BaseTimeout) * math.Pow(p.Multiplier, float64(attempt))
	return time.Duration(d)
}

// Retryable reports whether the failure kind may be retried at all.
// A resource that is not an image stays not-an-image no matter how often
// it is fetched; an HTTP error status is retried even for client errors,
// matching observed behavior downstream tests depend on.
func (p Policy) Retryable(kind findings.FailureKind) bool {
	switch kind {
	case findings.FailureHTTPStatus, findings.FailureTimeout, findings.FailureNetworkError:
		return true
	default:
		return false
	}
}

// LastAttempt reports whether the zero-based attempt is the final one.
func (p Policy) LastAttempt(attempt int) bool {
	return attempt >= p.MaxAttempts-1
}
