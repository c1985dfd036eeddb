package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("backend unavailable")

func TestBreakerPassesThroughWhileClosed(t *testing.T) {
	b := NewBreaker(3, time.Second)

	called := false
	if err := b.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !called {
		t.Fatal("fn was not invoked")
	}
	if b.Rejecting() {
		t.Fatal("breaker rejecting after a success")
	}
}

func TestBreakerTripsAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Second)

	for i := 0; i < 3; i++ {
		if err := b.Execute(func() error { return errUpstream }); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d: err = %v, want errUpstream", i, err)
		}
	}

	err := b.Execute(func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if !b.Rejecting() {
		t.Fatal("Rejecting() = false on a tripped breaker")
	}
}

func TestBreakerFailureCountResetsOnSuccess(t *testing.T) {
	b := NewBreaker(2, time.Second)

	_ = b.Execute(func() error { return errUpstream })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errUpstream })

	// Only one consecutive failure, so still admitting.
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestBreakerProbeSuccessCloses(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.clock = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Execute(func() error { return errUpstream })
	}
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen during cooldown", err)
	}

	now = now.Add(2 * time.Second)

	// Cooldown elapsed; the probe call runs and its success closes the circuit.
	called := false
	if err := b.Execute(func() error { called = true; return nil }); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if !called {
		t.Fatal("probe fn was not invoked")
	}
	if b.Rejecting() {
		t.Fatal("breaker still rejecting after probe success")
	}
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.clock = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_ = b.Execute(func() error { return errUpstream })
	}

	now = now.Add(2 * time.Second)

	// A single failed probe re-trips for a full cooldown.
	_ = b.Execute(func() error { return errUpstream })

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen after failed probe", err)
	}
}
