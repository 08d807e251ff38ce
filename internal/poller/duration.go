package poller

import (
	"math"
)

// DurationResolver derives a call's duration in whole seconds from whatever
// the provider reported.
type DurationResolver struct {
	// TimeoutEstimate is charged for calls that never reached a terminal
	// status.
	TimeoutEstimate int64
}

// Resolve applies, in order: the provider's explicit non-zero duration, the
// difference between start and end timestamps, the timeout estimate for
// timed-out calls, and finally zero. The result is never negative.
func (d DurationResolver) Resolve(res Result) int64 {
	if c := res.Snapshot; c != nil {
		if c.Duration > 0 {
			return int64(math.Floor(c.Duration))
		}
		start, okStart := c.StartTime()
		end, okEnd := c.EndTime()
		if okStart && okEnd {
			if secs := int64(end.Sub(start).Seconds()); secs > 0 {
				return secs
			}
			return 0
		}
	}
	if res.TimedOut() && d.TimeoutEstimate > 0 {
		return d.TimeoutEstimate
	}
	return 0
}
