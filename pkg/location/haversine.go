package location

import "math"

// EarthRadiusMeters is the mean Earth radius used by every distance helper.
const EarthRadiusMeters = 6371000.0

func toRad(d float64) float64 { return d * math.Pi / 180 }

func toDeg(r float64) float64 { return r * 180 / math.Pi }

// Distance returns the haversine distance in meters between two points (lat/lng in degrees).
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	φ1, φ2 := toRad(lat1), toRad(lat2)
	Δφ := toRad(lat2 - lat1)
	Δλ := toRad(lng2 - lng1)
	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	// Rounding can push a a hair past 1 for antipodal points.
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// DistanceKm is Distance in kilometers.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return Distance(lat1, lng1, lat2, lng2) / 1000
}

// ValidCoordinates reports whether lat/lng are finite and inside [-90,90] / [-180,180].
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// MetersToDegrees converts an offset in meters to degrees (approx, ~111km per degree).
// Used to obfuscate exact location before it leaves the server.
func MetersToDegrees(meters float64) float64 {
	return meters / 111000.0
}

// BoundingBox returns a box around a point that contains every point within radiusMeters.
// Stores use it as a cheap pre-filter before the exact haversine check.
func BoundingBox(lat, lng, radiusMeters float64) (minLat, minLng, maxLat, maxLng float64) {
	latDelta := toDeg(radiusMeters / EarthRadiusMeters)
	minLat, maxLat = lat-latDelta, lat+latDelta
	if minLat <= -90 || maxLat >= 90 {
		// Box touches a pole: every longitude qualifies.
		return math.Max(minLat, -90), -180, math.Min(maxLat, 90), 180
	}
	lngDelta := latDelta / math.Cos(toRad(lat))
	minLng, maxLng = lng-lngDelta, lng+lngDelta
	if minLng < -180 || maxLng > 180 {
		return minLat, -180, maxLat, 180
	}
	return minLat, minLng, maxLat, maxLng
}
