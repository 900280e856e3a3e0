package proximity

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/pkg/location"
)

// Filter selects and annotates the candidates near requester.
//
// Rules are applied in order: malformed record, self, stale, offline, excluded,
// out of radius. The result is sorted by ascending distance (ties by user id) and
// truncated to opts.Limit. pool is not modified.
func Filter(now time.Time, requester *Location, opts Options, pool []UserLocationRecord) ([]NearbyCandidate, error) {
	if err := Validate(requester, opts); err != nil {
		return nil, err
	}

	out := make([]NearbyCandidate, 0)
	for _, rec := range pool {
		if rec.UserID == "" || !location.ValidCoordinates(rec.Location.Latitude, rec.Location.Longitude) {
			continue
		}
		if rec.UserID == opts.UserID {
			continue
		}
		if now.Sub(rec.LastSeen) > opts.MaxAge {
			continue
		}
		if !opts.IncludeOffline && !rec.IsOnline {
			continue
		}
		if _, ok := opts.Exclude[rec.UserID]; ok {
			continue
		}
		d := location.Distance(requester.Latitude, requester.Longitude, rec.Location.Latitude, rec.Location.Longitude)
		if d > opts.Radius {
			continue
		}
		out = append(out, NearbyCandidate{
			UserLocationRecord: rec,
			DistanceMeters:     d,
			BearingDegrees:     location.Bearing(requester.Latitude, requester.Longitude, rec.Location.Latitude, rec.Location.Longitude),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceMeters != out[j].DistanceMeters {
			return out[i].DistanceMeters < out[j].DistanceMeters
		}
		return out[i].UserID < out[j].UserID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Validate reports whether a query can run at all, before any store is touched.
func Validate(requester *Location, opts Options) error {
	if requester == nil {
		return ErrLocationUnavailable
	}
	if !location.ValidCoordinates(requester.Latitude, requester.Longitude) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidLocation, requester.Latitude, requester.Longitude)
	}
	if math.IsNaN(opts.Radius) || math.IsInf(opts.Radius, 0) || opts.Radius < 0 {
		return fmt.Errorf("%w: radius %v", ErrInvalidOptions, opts.Radius)
	}
	if opts.MaxAge < 0 {
		return fmt.Errorf("%w: max age %v", ErrInvalidOptions, opts.MaxAge)
	}
	return nil
}
