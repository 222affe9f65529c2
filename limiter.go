package loadlimiter

import (
	"sync"
	"time"
)

// Result is the outcome of a Submit call.
type Result struct {
	Accepted bool
	// RetryIn is the estimated time until an equivalent load would be
	// admitted. It is nil when Accepted is true, when Config.ComputeTTA
	// is false, or when the estimator cannot produce a lower bound
	// (including when load exceeds MaxLoad, which can never be
	// admitted in isolation).
	RetryIn *time.Duration
}

// LimiterLike is implemented by both *Limiter and *CompositeLimiter,
// so callers and wrappers like Wait can treat a composite and a
// single limiter interchangeably.
type LimiterLike interface {
	Submit(load float64) Result
	InstantLoadFactor() float64
	Distribute(amount float64)
}

var (
	_ LimiterLike = (*Limiter)(nil)
	_ LimiterLike = (*CompositeLimiter)(nil)
)

// Limiter is a single sliding-window load limiter. All exported
// methods are safe for concurrent use; each acquires the limiter's
// mutex for its full duration and never suspends while holding it.
type Limiter struct {
	cfg     Config
	derived derived

	mu            sync.Mutex
	win           window
	wasOver       bool
	numCalls      uint64
	totalOverhead time.Duration

	logger eventLogger
}

// New validates cfg and constructs a Limiter. No partial Limiter is
// returned on error.
func New(cfg Config) (*Limiter, error) {
	d, err := validateAndDerive(&cfg)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = newDefaultLogger()
	}

	return &Limiter{
		cfg:     cfg,
		derived: d,
		win:     newWindow(),
		logger:  logger,
	}, nil
}

// MaxLoad returns the configured admission ceiling, as set at
// construction or by the last Restore.
func (l *Limiter) MaxLoad() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg.MaxLoad
}

// Period returns the configured window length in seconds, as set at
// construction or by the last Restore.
func (l *Limiter) Period() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg.Period
}

// WindowTotal returns the current window total, advancing the window
// to now first.
func (l *Limiter) WindowTotal() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advance()
	return l.win.total
}

// NumCalls returns the number of Submit calls observed so far.
func (l *Limiter) NumCalls() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.numCalls
}

// TotalOverhead returns the cumulative time spent in Submit, including
// any time spent waiting to acquire the lock.
func (l *Limiter) TotalOverhead() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalOverhead
}

// Submit attempts to admit load, returning whether it was accepted
// and, on reject, an optional estimate of when an equivalent load
// would fit. A rejected load is never added to the window. Note that
// an accept clears the over-limit flag unconditionally, even if a
// prior penalty burst left the window total above MaxLoad, so the
// next reject re-applies the entry penalty; this is intentional burst
// shaping.
func (l *Limiter) Submit(load float64) Result {
	started := timeNow()
	l.mu.Lock()
	defer l.mu.Unlock()
	defer func() { l.totalOverhead += timeNow().Sub(started) }()

	l.advance()
	l.numCalls++

	if load == 0 {
		// always accepted, state unchanged modulo advance()
		return Result{Accepted: true}
	}

	if l.probe(load) {
		return l.accept(load)
	}
	return l.reject(load)
}

// InstantLoadFactor returns the window total divided by MaxLoad after
// advancing the window to now, or 0 if the total is 0.
func (l *Limiter) InstantLoadFactor() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advance()
	if l.win.total == 0 {
		return 0
	}
	return l.win.total / l.cfg.MaxLoad
}

// Distribute injects amount of synthetic load across the whole
// window, for host-driven warm-up.
func (l *Limiter) Distribute(amount float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advance()
	l.win.distributePenalty(amount, 1.0, l.derived.numMaxBuckets, l.derived.stepPeriod, l.derived.maxCap, l)
}

// advance assumes the lock is held.
func (l *Limiter) advance() {
	l.win.advance(timeNow(), l.derived.stepPeriod, l.cfg.Period, l)
}

// probe assumes the lock is held and the window has already been
// advanced by the caller.
func (l *Limiter) probe(load float64) bool {
	return l.win.total+load <= l.cfg.MaxLoad
}

// accept assumes the lock is held, the window has been advanced, and
// probe(load) has already returned true.
func (l *Limiter) accept(load float64) Result {
	n := l.win.buckets.Len()
	last := l.win.buckets.Get(n - 1)
	last.load += load
	l.win.buckets.Set(n-1, last)
	l.win.total += load

	if l.win.total > l.derived.maxCap {
		// unreachable from a bare accept absent prior penalty
		l.win.trimFromOldest(l.derived.maxCap, l)
	}

	l.wasOver = false
	return Result{Accepted: true}
}

// reject assumes the lock is held, the window has been advanced, and
// probe(load) has already returned false. load is never added to the
// window on this path.
func (l *Limiter) reject(load float64) Result {
	l.win.trimFromOldest(l.derived.maxCap, l)

	if !l.wasOver {
		l.win.correctAscendingDrift(l)
		if l.derived.entryPenalty > 0 {
			l.win.distributePenalty(l.derived.entryPenalty, l.cfg.PenaltyDistributionFactor, l.derived.numMaxBuckets, l.derived.stepPeriod, l.derived.maxCap, l)
		}
	} else if l.cfg.RequestOverheadPenaltyFactor > 0 {
		overhead := load * l.cfg.RequestOverheadPenaltyFactor
		if overhead > 0 {
			l.win.distributePenalty(overhead, l.cfg.RequestOverheadPenaltyDistributionFactor, l.derived.numMaxBuckets, l.derived.stepPeriod, l.derived.maxCap, l)
		}
	}

	l.wasOver = true

	var retryIn *time.Duration
	if l.cfg.ComputeTTA {
		retryIn = estimateTTA(&l.win, l.cfg.MaxLoad, l.cfg.Period, load, timeNow(), l)
	}

	return Result{Accepted: false, RetryIn: retryIn}
}
