package loadlimiter

import (
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// CompositeLimiter delegates to N child Limiters and admits a request
// iff all children would admit it, committed via a local two-phase
// commit: every child is probed first, and only a unanimous pass
// mutates any child's window.
type CompositeLimiter struct {
	name     string
	children []*Limiter
	widest   *Limiter

	mu sync.Mutex
}

// NewComposite constructs a CompositeLimiter over children, which must
// be non-empty.
func NewComposite(name string, children ...*Limiter) (*CompositeLimiter, error) {
	if len(children) < 1 {
		return nil, configErrorf(`children`, `at least one limiter is required for composition`)
	}

	sorted := append([]*Limiter(nil), children...)
	slices.SortFunc(sorted, func(a, b *Limiter) int {
		switch {
		case a.cfg.Period < b.cfg.Period:
			return -1
		case a.cfg.Period > b.cfg.Period:
			return 1
		default:
			return 0
		}
	})

	return &CompositeLimiter{
		name:     name,
		children: children,
		widest:   sorted[len(sorted)-1],
	}, nil
}

// Submit probes every child under the child's own lock, then either
// commits the accept branch on every child (if all probes passed) or
// the reject branch on every child that failed. Because the
// composite's own lock is held throughout, no child's state can
// change between the probe and commit phases: the commit step cannot
// fail.
func (c *CompositeLimiter) Submit(load float64) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	var passed []*Limiter
	var anyFailed bool
	var highestRetry *time.Duration

	for _, child := range c.children {
		child.mu.Lock()
		child.advance()
		ok := child.probe(load)
		if ok {
			passed = append(passed, child)
			child.mu.Unlock()
			continue
		}

		anyFailed = true
		res := child.reject(load)
		child.mu.Unlock()
		if res.RetryIn != nil && (highestRetry == nil || *res.RetryIn > *highestRetry) {
			highestRetry = res.RetryIn
		}
	}

	if anyFailed {
		// accepted children are not mutated
		return Result{Accepted: false, RetryIn: highestRetry}
	}

	for _, child := range passed {
		child.mu.Lock()
		child.accept(load)
		child.mu.Unlock()
	}

	return Result{Accepted: true}
}

// InstantLoadFactor returns the maximum instant load factor across all
// children.
func (c *CompositeLimiter) InstantLoadFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var max float64
	for i, child := range c.children {
		child.mu.Lock()
		child.advance()
		var factor float64
		if child.win.total != 0 {
			factor = child.win.total / child.cfg.MaxLoad
		}
		child.mu.Unlock()
		if i == 0 || factor > max {
			max = factor
		}
	}
	return max
}

// Distribute forwards amount to every child's Distribute in turn.
func (c *CompositeLimiter) Distribute(amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, child := range c.children {
		child.Distribute(amount)
	}
}

// MaxLoad, Period and WindowTotal read through to the widest-period
// child, for dashboards.
func (c *CompositeLimiter) MaxLoad() float64 { return c.widest.MaxLoad() }
func (c *CompositeLimiter) Period() int64    { return c.widest.Period() }
func (c *CompositeLimiter) WindowTotal() float64 {
	return c.widest.WindowTotal()
}
