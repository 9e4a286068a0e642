package circuit

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(config Config) (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewBreaker("redis", config, zap.NewNop(), WithClock(clock.Now)), clock
}

func TestNewBreaker(t *testing.T) {
	breaker := NewBreaker("redis", DefaultConfig(), nil)

	if breaker.State() != StateClosed {
		t.Errorf("Expected initial state CLOSED, got %s", breaker.State())
	}
	if err := breaker.Allow(); err != nil {
		t.Errorf("Expected closed breaker to allow, got %v", err)
	}
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 3, Timeout: time.Second, SuccessThreshold: 1, MaxHalfOpen: 1})

	for i := 0; i < 2; i++ {
		breaker.Record(errors.New("dial tcp: refused"))
	}
	if breaker.State() != StateClosed {
		t.Fatalf("Expected CLOSED below threshold, got %s", breaker.State())
	}

	breaker.Record(errors.New("dial tcp: refused"))
	if breaker.State() != StateOpen {
		t.Fatalf("Expected OPEN at threshold, got %s", breaker.State())
	}
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 2, Timeout: time.Second, SuccessThreshold: 1, MaxHalfOpen: 1})

	breaker.Record(errors.New("boom"))
	breaker.Record(nil)
	breaker.Record(errors.New("boom"))

	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED, failures are not consecutive; got %s", breaker.State())
	}
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	breaker, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Minute, SuccessThreshold: 2, MaxHalfOpen: 1})

	breaker.Record(errors.New("boom"))
	clock.Advance(59 * time.Second)
	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Expected still open before timeout, got %v", err)
	}

	clock.Advance(time.Second)
	if err := breaker.Allow(); err != nil {
		t.Fatalf("Expected trial call after timeout, got %v", err)
	}
	if breaker.State() != StateHalfOpen {
		t.Fatalf("Expected HALF_OPEN, got %s", breaker.State())
	}
	if err := breaker.Allow(); !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("Expected a single concurrent trial, got %v", err)
	}
}

func TestBreaker_ClosesAfterTrialSuccesses(t *testing.T) {
	breaker, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Minute, SuccessThreshold: 2, MaxHalfOpen: 1})

	breaker.Record(errors.New("boom"))
	clock.Advance(time.Minute)

	for i := 0; i < 2; i++ {
		if err := breaker.Execute(func() error { return nil }); err != nil {
			t.Fatalf("trial %d: %v", i, err)
		}
	}

	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED after successes, got %s", breaker.State())
	}
}

func TestBreaker_TrialFailureReopens(t *testing.T) {
	breaker, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Minute, SuccessThreshold: 1, MaxHalfOpen: 1})

	breaker.Record(errors.New("boom"))
	clock.Advance(time.Minute)

	testErr := errors.New("still down")
	if err := breaker.Execute(func() error { return testErr }); err != testErr {
		t.Fatalf("Expected fn error, got %v", err)
	}
	if breaker.State() != StateOpen {
		t.Errorf("Expected OPEN after failed trial, got %s", breaker.State())
	}
}

func TestBreaker_ExecuteSkipsFnWhenOpen(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Hour, SuccessThreshold: 1, MaxHalfOpen: 1})
	breaker.Record(errors.New("boom"))

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Errorf("Expected fast failure without calling fn, err=%v called=%v", err, called)
	}
}

func TestBreaker_ResetAndSnapshot(t *testing.T) {
	breaker, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Hour})
	breaker.Record(errors.New("boom"))

	snap := breaker.Snapshot()
	if snap.State != "OPEN" || snap.Failures != 1 || snap.Name != "redis" {
		t.Errorf("Unexpected snapshot %+v", snap)
	}

	breaker.Reset()
	if breaker.State() != StateClosed {
		t.Errorf("Expected CLOSED after reset, got %s", breaker.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF_OPEN"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.expected)
		}
	}
}
