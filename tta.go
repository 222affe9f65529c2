package loadlimiter

import "time"

// ttaLogger is implemented by *Limiter for the TTAInconsistent warning.
type ttaLogger interface {
	logTTAInconsistent(load, windowTotal, maxload float64)
}

// estimateTTA computes the time-to-availability for a rejected load:
// the instant the oldest buckets holding enough load to make room
// fall out of the window, minus now. It returns nil when no future
// time (within the tracked window) would admit load, including when
// load itself exceeds maxload. The estimate is a lower bound; a retry
// at now+tta may still lose to competing submitters.
func estimateTTA(w *window, maxload float64, period int64, load float64, now time.Time, log ttaLogger) *time.Duration {
	if load > maxload {
		return nil
	}

	var toFree float64
	if w.total > maxload {
		toFree = load + (w.total - maxload)
	} else {
		toFree = load - (maxload - w.total)
	}

	if toFree <= 0 {
		log.logTTAInconsistent(load, w.total, maxload)
		d := time.Second
		return &d
	}

	var acc float64
	var bStart int64
	found := false
	for i := 0; i < w.buckets.Len(); i++ {
		b := w.buckets.Get(i)
		acc += b.load
		bStart = b.start
		if acc >= toFree {
			found = true
			break
		}
	}

	if !found {
		return nil
	}

	availableAt := time.Unix(bStart+period, 0)
	d := availableAt.Sub(now)
	return &d
}
