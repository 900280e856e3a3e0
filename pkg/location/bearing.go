package location

import (
	"math"
	"strconv"
)

var cardinalDirections = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(d float64) float64 {
	n := math.Mod(math.Mod(d, 360)+360, 360)
	if n >= 360 {
		return 0
	}
	return n
}

// Bearing returns the initial great-circle bearing in degrees [0,360) from point 1 to point 2.
func Bearing(lat1, lng1, lat2, lng2 float64) float64 {
	φ1, φ2 := toRad(lat1), toRad(lat2)
	Δλ := toRad(lng2 - lng1)
	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	return NormalizeDegrees(toDeg(math.Atan2(y, x)))
}

// CardinalDirection buckets a bearing into one of 8 compass sectors of 45°,
// each centred on its direction (N covers [337.5, 22.5)).
// Returns "" for NaN or infinite input.
func CardinalDirection(bearing float64) string {
	if math.IsNaN(bearing) || math.IsInf(bearing, 0) {
		return ""
	}
	idx := int(math.Floor((NormalizeDegrees(bearing)+22.5)/45)) % 8
	return cardinalDirections[idx]
}

// FormatDistance renders meters for display: "850m" below 1km, "1.5km" from 1km up.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return strconv.FormatFloat(math.Round(meters), 'f', 0, 64) + "m"
	}
	return strconv.FormatFloat(meters/1000, 'f', 1, 64) + "km"
}
