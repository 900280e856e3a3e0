package geoindex

import (
	"context"
	"testing"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T, ttl time.Duration) (*Index, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func rec(id string, lat, lng float64, online bool) proximity.UserLocationRecord {
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return proximity.UserLocationRecord{
		UserID:   id,
		Location: proximity.Location{Latitude: lat, Longitude: lng, Timestamp: ts},
		LastSeen: ts,
		IsOnline: online,
		Name:     id,
	}
}

func TestPutGetRemove(t *testing.T) {
	idx, _ := newIndex(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, idx.Put(ctx, rec("a", 10, 106, true)))
	got, err := idx.Get(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Name)
	assert.True(t, got.LastSeen.Equal(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)))

	require.NoError(t, idx.Remove(ctx, "a"))
	got, err = idx.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCandidatesWithinRadius(t *testing.T) {
	idx, _ := newIndex(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, idx.Put(ctx, rec("me", 10, 106, true)))
	require.NoError(t, idx.Put(ctx, rec("near", 10.01, 106, true)))
	require.NoError(t, idx.Put(ctx, rec("far", 11, 106, true)))

	out, err := idx.Candidates(ctx, proximity.PoolQuery{
		RequesterID:  "me",
		Center:       proximity.Location{Latitude: 10, Longitude: 106},
		RadiusMeters: 5000,
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "near", out[0].UserID)
}

func TestCandidatesDropsExpiredMembers(t *testing.T) {
	idx, mr := newIndex(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, idx.Put(ctx, rec("old", 10.001, 106, true)))
	mr.FastForward(2 * time.Minute)

	out, err := idx.Candidates(ctx, proximity.PoolQuery{
		Center:       proximity.Location{Latitude: 10, Longitude: 106},
		RadiusMeters: 5000,
	})
	require.NoError(t, err)
	assert.Empty(t, out)

	members, err := mr.ZMembers(GeoKey)
	if err == nil {
		assert.NotContains(t, members, "old")
	}
}

func TestSetOnline(t *testing.T) {
	idx, _ := newIndex(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, idx.Put(ctx, rec("a", 10, 106, true)))

	require.NoError(t, idx.SetOnline(ctx, "a", false))
	got, err := idx.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, got.IsOnline)

	assert.NoError(t, idx.SetOnline(ctx, "missing", true))
}

func TestCandidatesRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	idx := New(rdb, time.Hour)
	_, err = idx.Candidates(context.Background(), proximity.PoolQuery{RadiusMeters: 100})
	assert.Error(t, err)
}
