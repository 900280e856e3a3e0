package proximity

import (
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/heading"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/location"
)

// RadarEntry is a candidate ready to draw: labels plus its spot on the radar disc.
type RadarEntry struct {
	NearbyCandidate
	Direction     string  `json:"direction"`
	DistanceLabel string  `json:"distance_label"`
	RelativeAngle float64 `json:"relative_angle"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Progress      float64 `json:"progress"`
	Label         string  `json:"label"`
}

// Radar annotates candidates for display. deviceHeading nil draws north-up.
func Radar(cs []NearbyCandidate, radiusMeters float64, deviceHeading *float64) []RadarEntry {
	h := 0.0
	if deviceHeading != nil {
		h = *deviceHeading
	}
	out := make([]RadarEntry, len(cs))
	for i, c := range cs {
		rel := heading.RelativeAngle(c.BearingDegrees, h)
		x, y := RadarPoint(c.DistanceMeters, radiusMeters, rel)
		p := Progress(c.DistanceMeters, radiusMeters)
		out[i] = RadarEntry{
			NearbyCandidate: c,
			Direction:       location.CardinalDirection(c.BearingDegrees),
			DistanceLabel:   location.FormatDistance(c.DistanceMeters),
			RelativeAngle:   rel,
			X:               x,
			Y:               y,
			Progress:        p,
			Label:           Label(p),
		}
	}
	return out
}
