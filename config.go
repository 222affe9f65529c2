package loadlimiter

import "math"

// Config holds the parameters of a Limiter. They are fixed at
// construction; only Restore replaces them, with a Snapshot's values.
type Config struct {
	// Name tags log events only; it has no bearing on admission.
	Name string

	// MaxLoad is the admission ceiling over Period. Must be > 0.
	MaxLoad float64

	// Period is the window length in seconds. Must be >= 1.
	Period int64

	// Fragmentation is the bucket size as a fraction of Period, in
	// [0.01, 1.0]. Defaults to 0.05 if zero.
	Fragmentation float64

	// PenaltyFactor is the entry penalty as a fraction of MaxLoad.
	// Must be >= 0.
	PenaltyFactor float64

	// PenaltyDistributionFactor is the fraction of buckets over which
	// the entry penalty is spread, in [0, 1]. The zero value is
	// meaningful (no spread, the entry penalty lands on the last
	// bucket) and is not defaulted away.
	PenaltyDistributionFactor float64

	// RequestOverheadPenaltyFactor is the per-request penalty
	// multiplier applied while a burst is still over. Must be >= 0.
	RequestOverheadPenaltyFactor float64

	// RequestOverheadPenaltyDistributionFactor is the spread width for
	// the overhead penalty, in [0, 1]. Like PenaltyDistributionFactor,
	// 0 is meaningful and is not defaulted away.
	RequestOverheadPenaltyDistributionFactor float64

	// MaxPenaltyCapFactor is the hard ceiling on the window total,
	// expressed as MaxLoad * (1 + MaxPenaltyCapFactor). Must be >= 0.
	// The zero value is a valid, meaningful setting (no penalty
	// headroom above MaxLoad) and is not defaulted away.
	MaxPenaltyCapFactor float64

	// ComputeTTA selects whether RetryIn is populated on reject.
	ComputeTTA bool

	// Logger receives DriftCorrected/TTAInconsistent/TrimUnderflow
	// events. If nil, a stumpy logger writing to stderr at
	// LevelInformational is used (debug events suppressed, warnings
	// shown).
	Logger eventLogger
}

// derived holds the values computed from Config at construction time.
type derived struct {
	stepPeriod    int64
	numMaxBuckets int
	maxCap        float64
	entryPenalty  float64
}

// defaultFragmentation is applied when Fragmentation is left at its
// zero value; 0 is not itself a valid Fragmentation (the constraint
// is [0.01, 1.0]), so the zero value is unambiguously "unset", unlike
// the other factors whose valid range includes 0.
const defaultFragmentation = 0.05

func validateAndDerive(cfg *Config) (derived, error) {
	if cfg.MaxLoad <= 0 {
		return derived{}, configErrorf(`MaxLoad`, `must be positive, got %v`, cfg.MaxLoad)
	}
	if cfg.Period < 1 {
		return derived{}, configErrorf(`Period`, `must be >= 1, got %v`, cfg.Period)
	}

	if cfg.Fragmentation == 0 {
		cfg.Fragmentation = defaultFragmentation
	}
	if cfg.Fragmentation < 0.01 || cfg.Fragmentation > 1.0 {
		return derived{}, configErrorf(`Fragmentation`, `must be in [0.01, 1.0], got %v`, cfg.Fragmentation)
	}

	if cfg.PenaltyFactor < 0 {
		return derived{}, configErrorf(`PenaltyFactor`, `must not be negative, got %v`, cfg.PenaltyFactor)
	}

	if cfg.PenaltyDistributionFactor < 0 || cfg.PenaltyDistributionFactor > 1 {
		return derived{}, configErrorf(`PenaltyDistributionFactor`, `must be in [0, 1], got %v`, cfg.PenaltyDistributionFactor)
	}

	if cfg.RequestOverheadPenaltyFactor < 0 {
		return derived{}, configErrorf(`RequestOverheadPenaltyFactor`, `must not be negative, got %v`, cfg.RequestOverheadPenaltyFactor)
	}

	if cfg.RequestOverheadPenaltyDistributionFactor < 0 || cfg.RequestOverheadPenaltyDistributionFactor > 1 {
		return derived{}, configErrorf(`RequestOverheadPenaltyDistributionFactor`, `must be in [0, 1], got %v`, cfg.RequestOverheadPenaltyDistributionFactor)
	}

	if cfg.MaxPenaltyCapFactor < 0 {
		return derived{}, configErrorf(`MaxPenaltyCapFactor`, `must not be negative, got %v`, cfg.MaxPenaltyCapFactor)
	}

	stepPeriod := int64(math.Ceil(float64(cfg.Period) * cfg.Fragmentation))
	if stepPeriod < 1 {
		stepPeriod = 1
	}

	numMaxBuckets := int(math.Ceil(float64(cfg.Period) / float64(stepPeriod)))

	maxCap := cfg.MaxLoad * (1.0 + cfg.MaxPenaltyCapFactor)

	return derived{
		stepPeriod:    stepPeriod,
		numMaxBuckets: numMaxBuckets,
		maxCap:        maxCap,
		entryPenalty:  entryPenaltyFor(cfg.MaxLoad, cfg.PenaltyFactor),
	}, nil
}

// entryPenaltyFor computes the one-shot entry penalty. It is floored
// to an integer amount, despite loads otherwise being real-valued; the
// overhead penalty stays real.
func entryPenaltyFor(maxload, penaltyFactor float64) float64 {
	v := math.Floor(maxload * penaltyFactor)
	if v < 0 {
		return 0
	}
	return v
}
