// Package heading smooths a noisy compass stream and converts absolute bearings
// into angles relative to where the device is pointing.
//
// A Tracker belongs to one scanning session and one sensor feed. It is not safe
// for concurrent use; a device has exactly one compass, so there is one writer.
package heading

import (
	"math"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/pkg/location"
)

// DefaultSmoothingFactor is heavily damped to hide magnetometer jitter.
const DefaultSmoothingFactor = 0.1

// State is a snapshot of a Tracker.
type State struct {
	RawHeadingDegrees      float64   `json:"raw"`
	SmoothedHeadingDegrees float64   `json:"smoothed"`
	LastUpdate             time.Time `json:"last_update"`
}

// Tracker applies exponential smoothing with wraparound-safe interpolation.
type Tracker struct {
	factor  float64
	now     func() time.Time
	state   State
	started bool
}

// NewTracker returns a Tracker using factor, which must be in (0, 1].
// Any other value falls back to DefaultSmoothingFactor.
func NewTracker(factor float64) *Tracker {
	if !(factor > 0 && factor <= 1) {
		factor = DefaultSmoothingFactor
	}
	return &Tracker{factor: factor, now: time.Now}
}

// Factor returns the smoothing factor in use.
func (t *Tracker) Factor() float64 { return t.factor }

// Update feeds one raw compass sample and returns the new smoothed heading.
// The first sample seeds the smoothed value. NaN and infinite samples are ignored.
func (t *Tracker) Update(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return t.state.SmoothedHeadingDegrees
	}
	raw = location.NormalizeDegrees(raw)
	t.state.RawHeadingDegrees = raw
	t.state.LastUpdate = t.now()
	if !t.started {
		t.started = true
		t.state.SmoothedHeadingDegrees = raw
		return raw
	}
	t.state.SmoothedHeadingDegrees = location.NormalizeDegrees(
		t.state.SmoothedHeadingDegrees + ShortestDiff(t.state.SmoothedHeadingDegrees, raw)*t.factor,
	)
	return t.state.SmoothedHeadingDegrees
}

// Smoothed returns the current smoothed heading in [0, 360).
func (t *Tracker) Smoothed() float64 { return t.state.SmoothedHeadingDegrees }

// State returns a copy of the tracker state.
func (t *Tracker) State() State { return t.state }

// Started reports whether at least one valid sample has been seen.
func (t *Tracker) Started() bool { return t.started }

// ShortestDiff returns the signed difference to - from in (-180, 180].
func ShortestDiff(from, to float64) float64 {
	diff := location.NormalizeDegrees(to) - location.NormalizeDegrees(from)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}

// RelativeAngle is how many degrees clockwise from the device heading the target lies.
func RelativeAngle(targetBearing, deviceHeading float64) float64 {
	return location.NormalizeDegrees(targetBearing - deviceHeading)
}

// FromMagnetometer derives a heading in [0, 360) from the x/y magnetometer axes.
func FromMagnetometer(x, y float64) float64 {
	return location.NormalizeDegrees(math.Atan2(y, x) * 180 / math.Pi)
}
