package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmorenoc/cronograma/internal/findings"
)

func TestAttemptTimeoutLadder(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseTimeout: 10 * time.Second, Multiplier: 1.5}

	assert.Equal(t, 10*time.Second, p.AttemptTimeout(0))
	assert.Equal(t, 15*time.Second, p.AttemptTimeout(1))
	assert.Equal(t, 22500*time.Millisecond, p.AttemptTimeout(2))
}

func TestRetryable(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.Retryable(findings.FailureHTTPStatus))
	assert.True(t, p.Retryable(findings.FailureTimeout))
	assert.True(t, p.Retryable(findings.FailureNetworkError))
	assert.False(t, p.Retryable(findings.FailureNotAnImage))
	assert.False(t, p.Retryable(findings.FailureUnexpected))
}

func TestLastAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3}

	assert.False(t, p.LastAttempt(0))
	assert.False(t, p.LastAttempt(1))
	assert.True(t, p.LastAttempt(2))
}
