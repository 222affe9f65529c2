package loadlimiter

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// eventLogger is the structured logger type used throughout this
// package, an alias for brevity. It is the same Logger[*stumpy.Event]
// shape that the pack's logiface/stumpy pairing exposes elsewhere
// (stumpy.L.New), reused here rather than introducing a bespoke
// logging interface.
type eventLogger = *logiface.Logger[*stumpy.Event]

// newDefaultLogger returns a stderr logger at LevelInformational:
// drift-correction events are debug-level (so suppressed by default),
// TTA inconsistencies and trim underflows are warnings (so visible).
func newDefaultLogger() eventLogger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(),
		stumpy.L.WithLevel(logiface.LevelInformational),
	)
}

func (l *Limiter) logDriftCorrected(direction string, before, after float64) {
	l.logger.Debug().
		Str(`limiter`, l.cfg.Name).
		Str(`direction`, direction).
		Float64(`before`, before).
		Float64(`after`, after).
		Log(`corrected window drift`)
}

func (l *Limiter) logTTAInconsistent(load, windowTotal, maxload float64) {
	l.logger.Warning().
		Str(`limiter`, l.cfg.Name).
		Float64(`load`, load).
		Float64(`window_total`, windowTotal).
		Float64(`maxload`, maxload).
		Log(`inconsistent TTA compute base, returning default`)
}

func (l *Limiter) logTrimUnderflow(remaining float64) {
	l.logger.Warning().
		Str(`limiter`, l.cfg.Name).
		Float64(`remaining`, remaining).
		Log(`cannot subtract excess over max cap starting from oldest buckets`)
}
