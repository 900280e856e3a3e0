package proximity

import "math"

// Label returns a privacy-safe proximity label based on progress (0-100).
// Progress = (1 - distance/maxRadius) * 100; 100 = very close, 0 = at max radius.
func Label(progressPct float64) string {
	switch {
	case progressPct >= 75:
		return "Very Close"
	case progressPct >= 50:
		return "Nearby"
	case progressPct >= 25:
		return "Within Area"
	case progressPct > 0:
		return "Far (within range)"
	default:
		return ""
	}
}

// Progress computes proximity progress: (1 - distance/radius) * 100, both in meters.
// If distance >= radius, returns 0.
func Progress(distanceMeters, radiusMeters float64) float64 {
	if radiusMeters <= 0 || distanceMeters >= radiusMeters {
		return 0
	}
	p := (1 - distanceMeters/radiusMeters) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// RadarPoint places a target on a unit disc centred on the requester, with the
// top of the disc being the direction the device points. relativeAngle is the
// clockwise angle from the device heading. y grows downwards, like screen coordinates.
func RadarPoint(distanceMeters, radiusMeters, relativeAngle float64) (x, y float64) {
	ratio := 1.0
	if radiusMeters > 0 {
		ratio = math.Min(distanceMeters/radiusMeters, 1)
	}
	if ratio < 0 {
		ratio = 0
	}
	rad := relativeAngle * math.Pi / 180
	return ratio * math.Sin(rad), -ratio * math.Cos(rad)
}
