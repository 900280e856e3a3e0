package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct {
	records []proximity.UserLocationRecord
	err     error
	last    proximity.PoolQuery
	calls   int
}

func (p *fakePool) Candidates(_ context.Context, q proximity.PoolQuery) ([]proximity.UserLocationRecord, error) {
	p.calls++
	p.last = q
	return p.records, p.err
}

type fakeBlocks map[string]struct{}

func (b fakeBlocks) HiddenFrom(string) (map[string]struct{}, error) { return b, nil }

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func candidate(id string, lat, lng float64) proximity.UserLocationRecord {
	return proximity.UserLocationRecord{
		UserID:   id,
		Location: proximity.Location{Latitude: lat, Longitude: lng, Timestamp: testNow},
		LastSeen: testNow,
		IsOnline: true,
	}
}

func newProximity(pool proximity.CandidatePool, blocks BlockLister) *ProximityService {
	s := NewProximityService(pool, blocks, 0)
	s.now = func() time.Time { return testNow }
	return s
}

func TestFindNearbyUsers(t *testing.T) {
	pool := &fakePool{records: []proximity.UserLocationRecord{
		candidate("me", 10, 106),
		candidate("a", 10.01, 106),
		candidate("b", 10.02, 106),
		candidate("blocked", 10.005, 106),
		candidate("far", 11, 106),
	}}
	s := newProximity(pool, fakeBlocks{"blocked": {}})
	me := &proximity.Location{Latitude: 10, Longitude: 106, Timestamp: testNow}

	out, err := s.FindNearbyUsers(context.Background(), "me", me, proximity.Options{Radius: 5000, MaxAge: time.Minute})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].UserID)
	assert.Equal(t, "b", out[1].UserID)

	assert.Equal(t, "me", pool.last.RequesterID)
	assert.Equal(t, 5000.0, pool.last.RadiusMeters)
	assert.Equal(t, 10.0, pool.last.Center.Latitude)
}

func TestFindNearbyUsersLocationUnavailable(t *testing.T) {
	pool := &fakePool{}
	s := newProximity(pool, nil)
	_, err := s.FindNearbyUsers(context.Background(), "me", nil, proximity.Options{Radius: 5000})
	assert.ErrorIs(t, err, proximity.ErrLocationUnavailable)
	assert.Zero(t, pool.calls, "pool must not be queried without a location")
}

func TestFindNearbyUsersInvalidOptions(t *testing.T) {
	s := newProximity(&fakePool{}, nil)
	me := &proximity.Location{Latitude: 10, Longitude: 106}
	_, err := s.FindNearbyUsers(context.Background(), "me", me, proximity.Options{Radius: -1})
	assert.ErrorIs(t, err, proximity.ErrInvalidOptions)

	_, err = s.FindNearbyUsers(context.Background(), "me", &proximity.Location{Latitude: 91}, proximity.Options{Radius: 1})
	assert.ErrorIs(t, err, proximity.ErrInvalidLocation)
}

func TestFindNearbyUsersPoolFailure(t *testing.T) {
	cause := errors.New("connection refused")
	s := newProximity(&fakePool{err: cause}, nil)
	me := &proximity.Location{Latitude: 10, Longitude: 106}
	_, err := s.FindNearbyUsers(context.Background(), "me", me, proximity.Options{Radius: 5000})
	assert.ErrorIs(t, err, proximity.ErrCandidatePoolFetch)
	assert.ErrorIs(t, err, cause)
}

func TestFindNearbyUsersKeepsCallerExcludes(t *testing.T) {
	pool := &fakePool{records: []proximity.UserLocationRecord{
		candidate("a", 10.001, 106),
		candidate("b", 10.002, 106),
		candidate("c", 10.003, 106),
	}}
	s := newProximity(pool, fakeBlocks{"a": {}})
	me := &proximity.Location{Latitude: 10, Longitude: 106}
	exclude := map[string]struct{}{"b": {}}

	out, err := s.FindNearbyUsers(context.Background(), "me", me, proximity.Options{Radius: 5000, MaxAge: time.Minute, Exclude: exclude})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c", out[0].UserID)
	assert.Len(t, exclude, 1, "caller map must not be mutated")
}

func TestObfuscateKeepsDistance(t *testing.T) {
	pool := &fakePool{records: []proximity.UserLocationRecord{candidate("a", 10.01, 106)}}
	s := NewProximityService(pool, nil, 100)
	s.now = func() time.Time { return testNow }
	s.rnd = func() float64 { return 1 }
	me := &proximity.Location{Latitude: 10, Longitude: 106}

	out, err := s.FindNearbyUsers(context.Background(), "me", me, proximity.Options{Radius: 5000, MaxAge: time.Minute})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 10.01+100.0/111000, out[0].Location.Latitude, 1e-9)
	assert.InDelta(t, 1112, out[0].DistanceMeters, 5)
}
