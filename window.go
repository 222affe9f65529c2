package loadlimiter

import (
	"math"
	"time"
)

// window is a time-aligned sequence of buckets plus the running sum
// of their load.
type window struct {
	buckets *bucketDeque
	total   float64
}

func newWindow() window {
	return window{buckets: newBucketDeque()}
}

// driftLogger decouples window's accounting from the concrete logger
// wiring in log.go; *Limiter implements it.
type driftLogger interface {
	logDriftCorrected(direction string, before, after float64)
	logTrimUnderflow(remaining float64)
}

// advance is an idempotent synchronization of the window to now: it
// appends a new bucket if the current time slot has no bucket yet, and
// evicts buckets that have aged out of period.
func (w *window) advance(now time.Time, stepPeriod, period int64, log driftLogger) {
	// the clock is real-valued seconds: bucket starts are aligned down
	// to whole stepPeriod multiples, but eviction compares against the
	// fractional instant, so a bucket ages out the moment the window's
	// trailing edge passes its start rather than a second later
	nowSec := float64(now.UnixNano()) / float64(time.Second)
	tStart := (int64(nowSec) / stepPeriod) * stepPeriod

	if w.buckets.Len() == 0 || w.buckets.Get(w.buckets.Len()-1).start != tStart {
		w.buckets.PushBack(bucket{start: tStart, load: 0})
	}

	removeBefore := nowSec - float64(period)
	for w.buckets.Len() > 0 {
		first := w.buckets.Get(0)
		if float64(first.start) >= removeBefore {
			break
		}
		before := w.total
		w.total -= first.load
		if w.total < 0 {
			if math.Abs(w.total) >= 0.1 {
				log.logDriftCorrected(`descending`, before, 0)
			}
			w.total = 0
		}
		w.buckets.RemoveFront(1)
	}
}

// correctAscendingDrift recomputes total from the bucket sum when the
// two have diverged past the accounting tolerance; invoked on every
// reject path before penalties are applied.
func (w *window) correctAscendingDrift(log driftLogger) {
	var sum float64
	for i := 0; i < w.buckets.Len(); i++ {
		sum += w.buckets.Get(i).load
	}
	diff := math.Abs(sum - w.total)
	if diff > 0.001 {
		before := w.total
		if diff >= 0.1 {
			log.logDriftCorrected(`ascending`, before, sum)
		}
		w.total = sum
	}
}

// trimFromOldest removes load in excess of maxCap, draining the
// oldest buckets to zero before moving right. Bucket loads never go
// negative.
func (w *window) trimFromOldest(maxCap float64, log driftLogger) {
	excess := w.total - maxCap
	if excess <= 0 {
		return
	}

	for excess > 1e-12 && w.buckets.Len() > 0 {
		b := w.buckets.Get(0)
		if b.load <= 0 {
			w.buckets.RemoveFront(1)
			continue
		}

		take := b.load
		if take > excess {
			take = excess
		}
		b.load -= take
		w.total -= take
		excess -= take

		if b.load <= 1e-12 {
			w.buckets.RemoveFront(1)
		} else {
			w.buckets.Set(0, b)
		}
	}

	if excess > 1e-9 {
		log.logTrimUnderflow(excess)
	}
}
