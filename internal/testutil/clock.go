package testutil

import "time"

// RunStamp is the instant frozen clocks report. Fixing it (together with a
// fixed run token) makes rendered artifacts byte-identical across runs.
var RunStamp = time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)

// FixedClock returns a clock stuck at the given instant, in the shape
// Pipeline.SetClock expects.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// Clock returns a clock stuck at RunStamp.
func Clock() func() time.Time {
	return FixedClock(RunStamp)
}
