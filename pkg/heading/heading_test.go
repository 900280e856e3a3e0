package heading

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackerFactor(t *testing.T) {
	assert.Equal(t, 0.3, NewTracker(0.3).Factor())
	assert.Equal(t, 1.0, NewTracker(1).Factor())
	assert.Equal(t, DefaultSmoothingFactor, NewTracker(0).Factor())
	assert.Equal(t, DefaultSmoothingFactor, NewTracker(1.5).Factor())
	assert.Equal(t, DefaultSmoothingFactor, NewTracker(math.NaN()).Factor())
}

func TestFirstSampleSeeds(t *testing.T) {
	tr := NewTracker(0.1)
	assert.False(t, tr.Started())
	assert.Equal(t, 123.0, tr.Update(123))
	assert.True(t, tr.Started())
	assert.Equal(t, 123.0, tr.Smoothed())
}

func TestConstantHeadingConverges(t *testing.T) {
	for _, target := range []float64{0, 45, 179, 180, 270, 359.9} {
		tr := NewTracker(0.1)
		tr.Update(target + 90)
		prevGap := math.Abs(ShortestDiff(tr.Smoothed(), target))
		for i := 0; i < 300; i++ {
			tr.Update(target)
			gap := math.Abs(ShortestDiff(tr.Smoothed(), target))
			require.LessOrEqual(t, gap, prevGap+1e-9, "overshoot for target %v at step %d", target, i)
			prevGap = gap
		}
		assert.InDelta(t, 0, ShortestDiff(tr.Smoothed(), target), 1e-6, "target %v", target)
	}
}

func TestWraparoundTakesShortPath(t *testing.T) {
	tr := NewTracker(0.1)
	tr.Update(359)
	for i := 0; i < 200; i++ {
		s := tr.Update(1)
		// Must stay on the 2° arc through north, never swing through 180°.
		assert.True(t, s >= 359 || s <= 1, "step %d smoothed %v", i, s)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.Less(t, s, 360.0)
	}
	assert.InDelta(t, 1, tr.Smoothed(), 1e-6)

	tr = NewTracker(0.5)
	tr.Update(1)
	s := tr.Update(359)
	assert.InDelta(t, 0, ShortestDiff(s, 0), 1e-9)
}

func TestUpdateIgnoresNonFinite(t *testing.T) {
	tr := NewTracker(0.1)
	tr.Update(10)
	before := tr.State()
	assert.Equal(t, 10.0, tr.Update(math.NaN()))
	assert.Equal(t, 10.0, tr.Update(math.Inf(-1)))
	assert.Equal(t, before, tr.State())
}

func TestUpdateStampsState(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := NewTracker(0.1)
	tr.now = func() time.Time { return at }
	tr.Update(-30)
	st := tr.State()
	assert.Equal(t, 330.0, st.RawHeadingDegrees)
	assert.Equal(t, 330.0, st.SmoothedHeadingDegrees)
	assert.Equal(t, at, st.LastUpdate)
}

func TestShortestDiff(t *testing.T) {
	assert.Equal(t, 2.0, ShortestDiff(359, 1))
	assert.Equal(t, -2.0, ShortestDiff(1, 359))
	assert.Equal(t, 180.0, ShortestDiff(0, 180))
	assert.Equal(t, 90.0, ShortestDiff(270, 0))
}

func TestRelativeAngle(t *testing.T) {
	assert.Equal(t, 45.0, RelativeAngle(90, 45))
	assert.Equal(t, 20.0, RelativeAngle(10, 350))
	assert.Equal(t, 340.0, RelativeAngle(350, 10))
	assert.Equal(t, 0.0, RelativeAngle(720, 0))
}

func TestFromMagnetometer(t *testing.T) {
	assert.InDelta(t, 0, FromMagnetometer(1, 0), 1e-9)
	assert.InDelta(t, 90, FromMagnetometer(0, 1), 1e-9)
	assert.InDelta(t, 270, FromMagnetometer(0, -1), 1e-9)
}

func TestThrottle(t *testing.T) {
	th := NewThrottle(5)
	assert.Equal(t, 200*time.Millisecond, th.Interval())
	t0 := time.Unix(1000, 0)
	assert.True(t, th.Allow(t0))
	assert.False(t, th.Allow(t0.Add(100*time.Millisecond)))
	assert.True(t, th.Allow(t0.Add(200*time.Millisecond)))
	assert.False(t, th.Allow(t0.Add(399*time.Millisecond)))

	assert.Equal(t, 200*time.Millisecond, NewThrottle(0).Interval())
}
