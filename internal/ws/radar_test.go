package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/config"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/auth"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/domain"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocations struct {
	mu  sync.Mutex
	loc *proximity.Location
	hub *RadarHub
}

func (f *fakeLocations) RequesterLocation(string) (*proximity.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loc, nil
}

func (f *fakeLocations) Update(_ context.Context, userID string, u service.LocationUpdate) (*models.UserLocation, error) {
	f.mu.Lock()
	f.loc = &proximity.Location{Latitude: u.Latitude, Longitude: u.Longitude}
	f.mu.Unlock()
	if f.hub != nil {
		f.hub.NotifyLocationChanged(userID)
	}
	return &models.UserLocation{UserID: userID, Latitude: u.Latitude, Longitude: u.Longitude}, nil
}

type fakeFinder struct {
	mu    sync.Mutex
	opts  []proximity.Options
	users []proximity.NearbyCandidate
}

func (f *fakeFinder) FindNearbyUsers(_ context.Context, _ string, loc *proximity.Location, opts proximity.Options) ([]proximity.NearbyCandidate, error) {
	if loc == nil {
		return nil, proximity.ErrLocationUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = append(f.opts, opts)
	return f.users, nil
}

func (f *fakeFinder) lastOpts() proximity.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts[len(f.opts)-1]
}

type received struct {
	Type     string                 `json:"type"`
	Code     string                 `json:"code"`
	Smoothed float64                `json:"smoothed"`
	RadiusM  float64                `json:"radius_m"`
	Heading  *float64               `json:"heading"`
	Users    []proximity.RadarEntry `json:"users"`
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.JWT = config.JWTConfig{AccessSecret: "ws-secret", AccessExpiry: time.Minute}
	cfg.Proximity.RescanInterval = time.Hour
	cfg.Proximity.HeadingDisplayHz = 0.001
	return cfg
}

func startServer(t *testing.T, cfg *config.Config, hub *RadarHub, finder NearbyFinder, locs LocationSource) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/radar", UpgradeRadarWS(cfg, hub, finder, locs))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/radar"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func next(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m received
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestRadarRejectsMissingToken(t *testing.T) {
	url := startServer(t, testConfig(), NewRadarHub(), &fakeFinder{}, &fakeLocations{})
	conn := dial(t, url)
	m := next(t, conn)
	assert.Equal(t, domain.MsgError, m.Type)
	assert.Equal(t, "UNAUTHORIZED", m.Code)
}

func TestRadarSession(t *testing.T) {
	cfg := testConfig()
	hub := NewRadarHub()
	finder := &fakeFinder{users: []proximity.NearbyCandidate{{
		UserLocationRecord: proximity.UserLocationRecord{UserID: "other", IsOnline: true},
		DistanceMeters:     1000,
		BearingDegrees:     90,
	}}}
	locs := &fakeLocations{hub: hub}
	url := startServer(t, cfg, hub, finder, locs)

	tok, err := auth.GenerateAccessToken(&cfg.JWT, "me")
	require.NoError(t, err)
	conn := dial(t, url+"?token="+tok)

	// No stored location yet.
	m := next(t, conn)
	assert.Equal(t, domain.MsgError, m.Type)
	assert.Equal(t, domain.CodeLocationUnavailable, m.Code)
	require.Eventually(t, func() bool { return hub.SessionCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "location", "latitude": 10.0, "longitude": 106.0}))
	m = next(t, conn)
	require.Equal(t, domain.MsgNearby, m.Type)
	require.Len(t, m.Users, 1)
	assert.Equal(t, "E", m.Users[0].Direction)
	assert.Nil(t, m.Heading)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "heading", "degrees": 90}))
	m = next(t, conn)
	assert.Equal(t, domain.MsgHeading, m.Type)
	assert.Equal(t, 90.0, m.Smoothed)

	// Throttled: the next message must be the nearby reply to the options change.
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "heading", "degrees": 95}))
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "options", "radius_m": 1e9, "include_offline": true}))
	m = next(t, conn)
	require.Equal(t, domain.MsgNearby, m.Type)
	assert.Equal(t, cfg.Proximity.MaxRadiusMeters, m.RadiusM)
	require.NotNil(t, m.Heading)
	assert.InDelta(t, 90.5, *m.Heading, 1e-9)
	assert.InDelta(t, 359.5, m.Users[0].RelativeAngle, 1e-9)
	assert.True(t, finder.lastOpts().IncludeOffline)

	hub.NotifyLocationChanged("someone")
	m = next(t, conn)
	assert.Equal(t, domain.MsgNearby, m.Type)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"type": "options", "radius_m": -5}))
	m = next(t, conn)
	assert.Equal(t, domain.CodeInvalidInput, m.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	m = next(t, conn)
	assert.Equal(t, domain.CodeInvalidInput, m.Code)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.SessionCount() == 0 && hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNudgeCoalesces(t *testing.T) {
	s := NewSession(&Client{UserID: "u", Send: make(chan []byte, 1)}, RadarConfig{}, &fakeFinder{}, &fakeLocations{})
	s.Nudge()
	s.Nudge()
	assert.Len(t, s.nudge, 1)
}

func TestClientEnqueueAfterClose(t *testing.T) {
	c := &Client{Send: make(chan []byte, 1)}
	assert.True(t, c.Enqueue([]byte("a")))
	assert.False(t, c.Enqueue([]byte("b")), "buffer full")
	c.Close()
	assert.False(t, c.Enqueue([]byte("c")))
	c.Close()
}
