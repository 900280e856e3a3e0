package service

import (
	"context"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/firestore"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/geoindex"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"
)

// LocationMirror receives copies of location and presence writes for secondary stores.
type LocationMirror interface {
	PutLocation(ctx context.Context, rec proximity.UserLocationRecord, accuracy float64) error
	RemoveLocation(ctx context.Context, userID string) error
	SetOnline(ctx context.Context, userID string, online bool, at time.Time) error
}

type redisMirror struct{ idx *geoindex.Index }

// RedisMirror keeps the GEO index in step with the SQL store.
func RedisMirror(idx *geoindex.Index) LocationMirror { return redisMirror{idx: idx} }

func (m redisMirror) PutLocation(ctx context.Context, rec proximity.UserLocationRecord, _ float64) error {
	return m.idx.Put(ctx, rec)
}

func (m redisMirror) RemoveLocation(ctx context.Context, userID string) error {
	return m.idx.Remove(ctx, userID)
}

func (m redisMirror) SetOnline(ctx context.Context, userID string, online bool, _ time.Time) error {
	return m.idx.SetOnline(ctx, userID, online)
}

type firestoreMirror struct{ pool *firestore.Pool }

// FirestoreMirror writes locations into the app's users documents.
func FirestoreMirror(p *firestore.Pool) LocationMirror { return firestoreMirror{pool: p} }

func (m firestoreMirror) PutLocation(ctx context.Context, rec proximity.UserLocationRecord, accuracy float64) error {
	return m.pool.UpdateLocation(ctx, rec.UserID, rec.Location, accuracy)
}

func (m firestoreMirror) RemoveLocation(ctx context.Context, userID string) error {
	return m.pool.ClearLocation(ctx, userID)
}

func (m firestoreMirror) SetOnline(ctx context.Context, userID string, online bool, at time.Time) error {
	return m.pool.SetOnline(ctx, userID, online, at)
}
