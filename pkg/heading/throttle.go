package heading

import "time"

// DefaultDisplayHz is how often a UI should redraw the heading readout.
const DefaultDisplayHz = 5

// Throttle gates how often the smoothed heading is pushed to a display.
// The tracker itself still runs on every sample.
type Throttle struct {
	interval time.Duration
	last     time.Time
}

// NewThrottle allows at most hz emissions per second; hz <= 0 uses DefaultDisplayHz.
func NewThrottle(hz float64) *Throttle {
	if hz <= 0 {
		hz = DefaultDisplayHz
	}
	return &Throttle{interval: time.Duration(float64(time.Second) / hz)}
}

// Allow reports whether an emission at t is due, and records it if so.
func (th *Throttle) Allow(t time.Time) bool {
	if !th.last.IsZero() && t.Sub(th.last) < th.interval {
		return false
	}
	th.last = t
	return true
}

// Interval returns the minimum spacing between emissions.
func (th *Throttle) Interval() time.Duration { return th.interval }
