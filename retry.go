package loadlimiter

import (
	"context"
	"math"
	"time"
)

// Wait is a thin convenience built around Submit: it retries until
// load is admitted, sleeping ceil(RetryIn) between attempts, and
// returns early if ctx is cancelled or l reports that no retry is
// possible. Each attempt is an independent critical section; the
// limiter's lock is never held across a sleep. Bound the total wait
// through ctx.
func Wait(ctx context.Context, l LimiterLike, load float64) error {
	for {
		res := l.Submit(load)
		if res.Accepted {
			return nil
		}

		if res.RetryIn == nil || *res.RetryIn <= 0 {
			return &LoadLimitExceededError{RetryIn: res.RetryIn}
		}

		wait := time.Duration(math.Ceil(res.RetryIn.Seconds())) * time.Second

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
