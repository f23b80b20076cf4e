package sim

import "math"

// TicksPerSecond is the resolution of every internal timer. Timers are int64
// microseconds so that summing many small deltas reaches a boundary at
// exactly the same tick as one large delta.
const TicksPerSecond = 1_000_000

// secondsToTicks converts real seconds to ticks, rounding to the nearest tick.
func secondsToTicks(s float64) int64 {
	return int64(math.Round(s * TicksPerSecond))
}

// ticksToSeconds converts ticks back to real seconds for reporting.
func ticksToSeconds(t int64) float64 {
	return float64(t) / TicksPerSecond
}
