// Package firestore reads and writes user locations in the Firestore users
// collection used by the mobile app.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/config"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	fs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/type/latlng"
)

type Pool struct {
	client     *fs.Client
	collection string
}

// NewPool connects using the service account file from cfg.
func NewPool(ctx context.Context, cfg config.FirebaseConfig) (*Pool, error) {
	if cfg.ServiceAccountPath == "" {
		return nil, errors.New("firebase service account path not configured")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, option.WithCredentialsFile(cfg.ServiceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}
	col := cfg.UsersCollection
	if col == "" {
		col = "users"
	}
	return &Pool{client: client, collection: col}, nil
}

func (p *Pool) Close() error { return p.client.Close() }

// Candidates implements proximity.CandidatePool. Firestore cannot range over two
// fields at once, so every user with a location is returned and proximity.Filter
// does the geometry.
func (p *Pool) Candidates(ctx context.Context, q proximity.PoolQuery) ([]proximity.UserLocationRecord, error) {
	docs, err := p.client.Collection(p.collection).Where("location", "!=", nil).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query firestore users: %w", err)
	}
	out := make([]proximity.UserLocationRecord, 0, len(docs))
	for _, d := range docs {
		if d.Ref.ID == q.RequesterID {
			continue
		}
		rec, ok := decodeUser(d.Ref.ID, d.Data())
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// UpdateLocation writes the fix in the document shape the app reads.
func (p *Pool) UpdateLocation(ctx context.Context, userID string, loc proximity.Location, accuracy float64) error {
	_, err := p.client.Collection(p.collection).Doc(userID).Set(ctx, map[string]interface{}{
		"location": map[string]interface{}{
			"latitude":  loc.Latitude,
			"longitude": loc.Longitude,
			"accuracy":  accuracy,
			"updatedAt": loc.Timestamp,
		},
		"lastLocationUpdate": loc.Timestamp,
	}, fs.MergeAll)
	if err != nil {
		return fmt.Errorf("update firestore location: %w", err)
	}
	return nil
}

func (p *Pool) ClearLocation(ctx context.Context, userID string) error {
	_, err := p.client.Collection(p.collection).Doc(userID).Set(ctx, map[string]interface{}{
		"location":           fs.Delete,
		"lastLocationUpdate": time.Now().UTC(),
	}, fs.MergeAll)
	if err != nil {
		return fmt.Errorf("clear firestore location: %w", err)
	}
	return nil
}

func (p *Pool) SetOnline(ctx context.Context, userID string, online bool, at time.Time) error {
	_, err := p.client.Collection(p.collection).Doc(userID).Set(ctx, map[string]interface{}{
		"isOnline": online,
		"lastSeen": at,
	}, fs.MergeAll)
	if err != nil {
		return fmt.Errorf("update firestore presence: %w", err)
	}
	return nil
}

// decodeUser maps a users document to a record. The location field is either a
// GeoPoint or a {latitude, longitude, updatedAt} map.
func decodeUser(id string, data map[string]interface{}) (proximity.UserLocationRecord, bool) {
	rec := proximity.UserLocationRecord{UserID: id}
	switch v := data["location"].(type) {
	case *latlng.LatLng:
		rec.Location.Latitude = v.GetLatitude()
		rec.Location.Longitude = v.GetLongitude()
	case map[string]interface{}:
		lat, okLat := toFloat(v["latitude"])
		lng, okLng := toFloat(v["longitude"])
		if !okLat || !okLng {
			return rec, false
		}
		rec.Location.Latitude = lat
		rec.Location.Longitude = lng
		if ts, ok := v["updatedAt"].(time.Time); ok {
			rec.Location.Timestamp = ts
		}
	default:
		return rec, false
	}

	if ts, ok := data["lastLocationUpdate"].(time.Time); ok {
		rec.LastSeen = ts
	} else {
		rec.LastSeen = rec.Location.Timestamp
	}
	if rec.Location.Timestamp.IsZero() {
		rec.Location.Timestamp = rec.LastSeen
	}
	rec.IsOnline, _ = data["isOnline"].(bool)
	rec.Name = firstString(data, "name", "username", "displayName")
	rec.PhotoURL = firstString(data, "photoURL", "profileImage", "avatar")
	rec.Bio, _ = data["bio"].(string)
	if age, ok := toFloat(data["age"]); ok {
		rec.Age = int(age)
	}
	return rec, true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func firstString(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := data[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
