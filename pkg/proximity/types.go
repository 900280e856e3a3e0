package proximity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLocationUnavailable means the requester's own position could not be determined.
	// Callers must keep it distinct from an empty result.
	ErrLocationUnavailable = errors.New("location unavailable")
	// ErrCandidatePoolFetch wraps failures of the backing candidate store.
	ErrCandidatePoolFetch = errors.New("candidate pool fetch failed")
	// ErrInvalidLocation is returned for non-finite or out-of-range requester coordinates.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrInvalidOptions is returned for a negative/non-finite radius or a negative max age.
	ErrInvalidOptions = errors.New("invalid proximity options")
)

// Location is a single position fix. A new fix replaces the old one; it is never mutated.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLocationRecord is another user's last known position plus the profile
// fields a radar needs to render them.
type UserLocationRecord struct {
	UserID   string    `json:"user_id"`
	Location Location  `json:"location"`
	LastSeen time.Time `json:"last_seen"`
	IsOnline bool      `json:"is_online"`
	PhotoURL string    `json:"photo_url,omitempty"`
	Name     string    `json:"name,omitempty"`
	Age      int       `json:"age,omitempty"`
	Bio      string    `json:"bio,omitempty"`
}

// NearbyCandidate is a record annotated relative to the requester. Computed per query.
type NearbyCandidate struct {
	UserLocationRecord
	DistanceMeters float64 `json:"distance_meters"`
	BearingDegrees float64 `json:"bearing_degrees"`
}

// Options controls a nearby query.
type Options struct {
	Radius         float64       // meters, inclusive
	UserID         string        // requester, always excluded
	IncludeOffline bool
	MaxAge         time.Duration // records with now-LastSeen > MaxAge are stale
	Limit          int           // 0 means no limit
	Exclude        map[string]struct{}
}

// PoolQuery carries pre-filter hints for a CandidatePool. Providers may ignore Center
// and RadiusMeters and return a superset; Filter applies the exact rules.
type PoolQuery struct {
	RequesterID  string
	Center       Location
	RadiusMeters float64
}

// CandidatePool is the backing store for other users' last known locations.
type CandidatePool interface {
	Candidates(ctx context.Context, q PoolQuery) ([]UserLocationRecord, error)
}
