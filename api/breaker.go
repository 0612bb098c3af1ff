package api

import (
	"errors"
	"sync"
	"time"
)

// Breaker is a single-endpoint circuit breaker. After enough consecutive
// failures the circuit opens and fetches fail fast until the recovery
// timeout elapses, when one probe request is let through.
type Breaker struct {
	mu               sync.Mutex
	failureThreshold int
	recoveryTimeout  time.Duration

	consecutive int
	openedAt    time.Time
	open        bool
	halfOpen    bool
}

const (
	defaultFailureThreshold = 5
	defaultRecoveryTimeout  = 30 * time.Second
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request.
var ErrCircuitOpen = errors.New("fallback circuit open")

// NewBreaker creates a breaker that opens after threshold consecutive
// failures and probes again after recovery. Zero values select defaults.
func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = defaultFailureThreshold
	}
	if recovery <= 0 {
		recovery = defaultRecoveryTimeout
	}
	return &Breaker{failureThreshold: threshold, recoveryTimeout: recovery}
}

// Allow reports whether a request may proceed.
func (b *Breaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	if time.Since(b.openedAt) >= b.recoveryTimeout && !b.halfOpen {
		// Let one probe through.
		b.halfOpen = true
		return nil
	}
	return ErrCircuitOpen
}

// RecordSuccess closes the circuit.
func (b *Breaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutive = 0
	b.open = false
	b.halfOpen = false
}

// RecordFailure counts a failure and opens the circuit at the threshold.
func (b *Breaker) RecordFailure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutive++
	if b.halfOpen || b.consecutive >= b.failureThreshold {
		b.open = true
		b.halfOpen = false
		b.openedAt = time.Now()
	}
}
