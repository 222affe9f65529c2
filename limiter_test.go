package loadlimiter

import (
	"testing"
	"time"
)

func withFrozenClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{MaxLoad: 0, Period: 60})
	if err == nil {
		t.Fatal("expected error for zero MaxLoad")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestLimiter_ZeroLoadAlwaysAccepted(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	res := l.Submit(0)
	if !res.Accepted {
		t.Fatal("expected zero load to be accepted")
	}
	if l.NumCalls() != 1 {
		t.Fatalf("expected NumCalls 1, got %d", l.NumCalls())
	}
}

func TestLimiter_AcceptsWithinMaxLoad(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	res := l.Submit(5)
	if !res.Accepted {
		t.Fatal("expected accept")
	}
	if got := l.WindowTotal(); got != 5 {
		t.Fatalf("expected window total 5, got %v", got)
	}

	res = l.Submit(5)
	if !res.Accepted {
		t.Fatal("expected second accept at exactly maxload")
	}
	if got := l.WindowTotal(); got != 10 {
		t.Fatalf("expected window total 10, got %v", got)
	}
}

func TestLimiter_RejectsOverMaxLoadAndAppliesEntryPenalty(t *testing.T) {
	l, err := New(Config{
		MaxLoad:                   10,
		Period:                    60,
		Fragmentation:             1.0, // single bucket for the whole period
		PenaltyFactor:             0.5, // entryPenalty = floor(10*0.5) = 5
		PenaltyDistributionFactor: 0,   // falls back onto the single bucket
		MaxPenaltyCapFactor:       1.0, // headroom so the penalty isn't immediately clamped away
	})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	l.Submit(10) // fills the window exactly

	res := l.Submit(1) // now rejected: 10+1 > 10
	if res.Accepted {
		t.Fatal("expected reject")
	}

	// entry penalty of 5 should have been distributed into the window
	if got := l.WindowTotal(); got != 15 {
		t.Fatalf("expected window total 15 after entry penalty, got %v", got)
	}
}

func TestLimiter_SubsequentRejectAppliesOverheadPenaltyNotEntryPenalty(t *testing.T) {
	l, err := New(Config{
		MaxLoad:                      10,
		Period:                       60,
		Fragmentation:                1.0,
		PenaltyFactor:                0.5, // entryPenalty = 5, applied once
		RequestOverheadPenaltyFactor: 0.2, // applied on every subsequent reject
		MaxPenaltyCapFactor:          1.0, // headroom so penalties aren't clamped to maxload
	})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	l.Submit(10)
	l.Submit(1) // first reject: entry penalty of 5 -> total 15
	totalAfterEntry := l.WindowTotal()
	if totalAfterEntry != 15 {
		t.Fatalf("expected total 15 after entry penalty, got %v", totalAfterEntry)
	}

	l.Submit(1) // second reject while wasOver: overhead penalty = 1*0.2 = 0.2
	totalAfterOverhead := l.WindowTotal()
	if totalAfterOverhead != 15.2 {
		t.Fatalf("expected total 15.2 after overhead penalty, got %v", totalAfterOverhead)
	}
}

func TestLimiter_AcceptClearsWasOver(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60, Fragmentation: 1.0, PenaltyFactor: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	l.Submit(10)
	res := l.Submit(5)
	if res.Accepted {
		t.Fatal("expected reject to set wasOver")
	}
	if !l.wasOver {
		t.Fatal("expected wasOver true after reject")
	}

	// advance past the window so capacity frees up, then accept
	withFrozenClock(t, time.Unix(61, 0))
	res = l.Submit(1)
	if !res.Accepted {
		t.Fatal("expected accept once the window has rolled over")
	}
	if l.wasOver {
		t.Fatal("expected wasOver cleared on accept")
	}
}

func TestLimiter_ComputeTTAPopulatesRetryIn(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60, Fragmentation: 1.0, ComputeTTA: true})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	l.Submit(10)
	res := l.Submit(5)
	if res.Accepted {
		t.Fatal("expected reject")
	}
	if res.RetryIn == nil {
		t.Fatal("expected RetryIn to be populated when ComputeTTA is set")
	}
}

func TestLimiter_ComputeTTAOmittedWhenDisabled(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60, Fragmentation: 1.0, ComputeTTA: false})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	l.Submit(10)
	res := l.Submit(5)
	if res.Accepted {
		t.Fatal("expected reject")
	}
	if res.RetryIn != nil {
		t.Fatal("expected RetryIn nil when ComputeTTA is false")
	}
}

func TestLimiter_InstantLoadFactor(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	if got := l.InstantLoadFactor(); got != 0 {
		t.Fatalf("expected 0 factor on empty window, got %v", got)
	}

	l.Submit(5)
	if got := l.InstantLoadFactor(); got != 0.5 {
		t.Fatalf("expected 0.5 factor, got %v", got)
	}
}

func TestLimiter_Distribute(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60, Fragmentation: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	l.Distribute(4)
	if got := l.WindowTotal(); got != 4 {
		t.Fatalf("expected window total 4 after Distribute, got %v", got)
	}
}

func TestLimiter_TotalOverheadAccumulates(t *testing.T) {
	l, err := New(Config{MaxLoad: 10, Period: 60})
	if err != nil {
		t.Fatal(err)
	}
	withFrozenClock(t, time.Unix(0, 0))

	l.Submit(1)
	l.Submit(1)

	// the clock is frozen, so each Submit's started/finished timestamps
	// are identical and TotalOverhead must stay exactly zero
	if got := l.TotalOverhead(); got != 0 {
		t.Fatalf("expected zero overhead under a frozen clock, got %v", got)
	}
}
