package httplog

import (
	"fmt"
	"math"
	"time"
)

// convertDuration converts an elapsed interval into the configured unit.
// Nanoseconds and microseconds are truncating integers; milliseconds (the
// default) is a float rounded to three decimal places. ok is false for an
// unrecognized unit, in which case the milliseconds value is returned and
// the caller surfaces a warning.
func convertDuration(elapsed time.Duration, unit DurationUnit) (any, bool) {
	switch unit {
	case UnitNanoseconds:
		return elapsed.Nanoseconds(), true
	case UnitMicroseconds:
		return elapsed.Microseconds(), true
	case UnitMilliseconds, "":
		return roundMillis(elapsed), true
	default:
		return roundMillis(elapsed), false
	}
}

func roundMillis(elapsed time.Duration) float64 {
	ms := float64(elapsed.Nanoseconds()) / 1e6
	return math.Round(ms*1000) / 1000
}

// zeroDuration is reported when no phase context carries a start timestamp.
// A missing start is never an error.
func zeroDuration(unit DurationUnit) any {
	switch unit {
	case UnitNanoseconds, UnitMicroseconds:
		return int64(0)
	default:
		return float64(0)
	}
}

func (i *Interceptor) duration(pc *PhaseContext) any {
	if pc == nil || pc.start.IsZero() {
		return zeroDuration(i.opts.DurationUnit)
	}
	val, ok := convertDuration(i.now().Sub(pc.start), pc.opts.DurationUnit)
	if !ok {
		// informational, not routed through the phase gates
		i.unitOnce.Do(func() {
			notice := fmt.Sprintf("unknown duration unit %q, falling back to milliseconds", pc.opts.DurationUnit)
			i.sink.Write(LevelWarn, []byte(notice))
		})
	}
	return val
}
