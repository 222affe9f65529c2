package loadlimiter

// Snapshot is the serializable state of a Limiter: the window
// buckets, the running total, the over-limit flag, the derived
// parameters, and the configuration factors, sufficient for an exact
// round trip via Restore. Persistence transport is left to the
// caller; only the shape is provided.
type Snapshot struct {
	Buckets       []BucketSnapshot `json:"buckets"`
	WindowTotal   float64          `json:"window_total"`
	WasOver       bool             `json:"was_over"`
	NumMaxBuckets int              `json:"num_max_buckets"`
	StepPeriod    int64            `json:"step_period"`
	Period        int64            `json:"period"`
	MaxLoad       float64          `json:"maxload"`
	MaxCap        float64          `json:"max_cap"`

	Fragmentation                            float64 `json:"fragmentation"`
	PenaltyFactor                            float64 `json:"penalty_factor"`
	PenaltyDistributionFactor                float64 `json:"penalty_distribution_factor"`
	RequestOverheadPenaltyFactor             float64 `json:"request_overhead_penalty_factor"`
	RequestOverheadPenaltyDistributionFactor float64 `json:"request_overhead_penalty_distribution_factor"`
	MaxPenaltyCapFactor                      float64 `json:"max_penalty_cap_factor"`
	ComputeTTA                               bool    `json:"compute_tta"`
}

// BucketSnapshot is the serializable form of a single bucket.
type BucketSnapshot struct {
	Start int64   `json:"start"`
	Load  float64 `json:"load"`
}

// Snapshot captures the current, already-advanced window state.
func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advance()

	buckets := make([]BucketSnapshot, l.win.buckets.Len())
	for i := range buckets {
		b := l.win.buckets.Get(i)
		buckets[i] = BucketSnapshot{Start: b.start, Load: b.load}
	}

	return Snapshot{
		Buckets:       buckets,
		WindowTotal:   l.win.total,
		WasOver:       l.wasOver,
		NumMaxBuckets: l.derived.numMaxBuckets,
		StepPeriod:    l.derived.stepPeriod,
		Period:        l.cfg.Period,
		MaxLoad:       l.cfg.MaxLoad,
		MaxCap:        l.derived.maxCap,

		Fragmentation:                            l.cfg.Fragmentation,
		PenaltyFactor:                            l.cfg.PenaltyFactor,
		PenaltyDistributionFactor:                l.cfg.PenaltyDistributionFactor,
		RequestOverheadPenaltyFactor:             l.cfg.RequestOverheadPenaltyFactor,
		RequestOverheadPenaltyDistributionFactor: l.cfg.RequestOverheadPenaltyDistributionFactor,
		MaxPenaltyCapFactor:                      l.cfg.MaxPenaltyCapFactor,
		ComputeTTA:                               l.cfg.ComputeTTA,
	}
}

// Restore reinstates state verbatim from a Snapshot previously
// produced by Snapshot. It does not re-validate the configuration
// factors (they are assumed to have been valid when the snapshot was
// taken); the derived parameters carried in the snapshot take
// precedence over whatever the receiving Limiter was constructed
// with, so restoring a snapshot onto a Limiter with different
// construction-time Config still reproduces the exact prior state.
func (l *Limiter) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	buckets := newBucketDeque()
	for _, b := range s.Buckets {
		buckets.PushBack(bucket{start: b.Start, load: b.Load})
	}

	l.win = window{buckets: buckets, total: s.WindowTotal}
	l.wasOver = s.WasOver

	l.derived.numMaxBuckets = s.NumMaxBuckets
	l.derived.stepPeriod = s.StepPeriod
	l.derived.maxCap = s.MaxCap

	l.cfg.Period = s.Period
	l.cfg.MaxLoad = s.MaxLoad
	l.cfg.Fragmentation = s.Fragmentation
	l.cfg.PenaltyFactor = s.PenaltyFactor
	l.cfg.PenaltyDistributionFactor = s.PenaltyDistributionFactor
	l.cfg.RequestOverheadPenaltyFactor = s.RequestOverheadPenaltyFactor
	l.cfg.RequestOverheadPenaltyDistributionFactor = s.RequestOverheadPenaltyDistributionFactor
	l.cfg.MaxPenaltyCapFactor = s.MaxPenaltyCapFactor
	l.cfg.ComputeTTA = s.ComputeTTA

	l.derived.entryPenalty = entryPenaltyFor(s.MaxLoad, s.PenaltyFactor)
}
