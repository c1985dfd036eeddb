// Package resilience guards calls to the SoldierIQ backend. Chat streams and
// REST calls share one upstream; when it degrades, the breaker sheds load
// instead of piling requests onto a failing service.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker rejects calls for a cooldown period once consecutive failures
// reach a threshold. After the cooldown one probe call is let through;
// its outcome decides whether the circuit closes again or stays open.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	clock     func() time.Time // injectable for tests

	mu      sync.Mutex
	fails   int
	tripped bool
	until   time.Time // rejecting until this instant while tripped
	probing bool
}

// NewBreaker creates a breaker that trips after threshold consecutive
// failures and cools down for the given duration.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		clock:     time.Now,
	}
}

// Execute runs fn unless the circuit is rejecting calls, in which case it
// returns ErrCircuitOpen without invoking fn.
func (b *Breaker) Execute(fn func() error) error {
	if !b.admit() {
		return ErrCircuitOpen
	}

	err := fn()
	b.record(err)
	return err
}

// admit reports whether a call may proceed, transitioning a cooled-down
// circuit into its probe phase.
func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.tripped {
		return true
	}
	if b.clock().Before(b.until) {
		return false
	}
	b.probing = true
	return true
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.fails = 0
		b.tripped = false
		b.probing = false
		return
	}

	b.fails++
	if b.probing || b.fails >= b.threshold {
		b.tripped = true
		b.probing = false
		b.until = b.clock().Add(b.cooldown)
	}
}

// Rejecting reports whether the breaker would currently refuse a call.
func (b *Breaker) Rejecting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped && b.clock().Before(b.until)
}
