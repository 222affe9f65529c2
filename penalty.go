package loadlimiter

import "math"

// distributePenalty adds amount of synthetic load to the window,
// spread backward across the buckets covered by factor *
// numMaxBuckets, clamped afterward by maxCap. Missing buckets in the
// spread are synthesized, at the left of the window or into gaps,
// preserving start ordering. Spreads too narrow or too dilute to
// matter fall back to the last bucket.
func (w *window) distributePenalty(amount float64, factor float64, numMaxBuckets int, stepPeriod int64, maxCap float64, log driftLogger) {
	if w.buckets.Len() < 1 || amount <= 0 {
		return
	}

	numBuckets := int(math.Floor(float64(numMaxBuckets) * factor))
	var perBucket float64
	if numBuckets > 1 {
		perBucket = amount / float64(numBuckets)
	}
	if numBuckets <= 1 || perBucket <= 1 {
		numBuckets = 1
		perBucket = amount
	}

	w.total += amount
	lastStart := w.buckets.Get(w.buckets.Len() - 1).start

	for i := 0; i < numBuckets; i++ {
		expectedStart := lastStart - int64(i)*stepPeriod
		qlen := w.buckets.Len()

		if qlen <= i {
			// not enough buckets: synthesize a new one at the left
			w.buckets.PushFront(bucket{start: expectedStart, load: 0})
			b := w.buckets.Get(0)
			b.load += perBucket
			w.buckets.Set(0, b)
			continue
		}

		pos := qlen - 1 - i
		b := w.buckets.Get(pos)
		if b.start < expectedStart {
			// bucket exists but is older than expected: synthesize a
			// middle bucket immediately to its newer side
			w.buckets.Insert(pos+1, bucket{start: expectedStart, load: 0})
			b = w.buckets.Get(pos + 1)
			b.load += perBucket
			w.buckets.Set(pos+1, b)
			continue
		}

		b.load += perBucket
		w.buckets.Set(pos, b)
	}

	w.trimFromOldest(maxCap, log)
}
