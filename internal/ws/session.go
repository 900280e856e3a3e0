package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/config"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/domain"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/logger"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/repository"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/service"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/heading"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"go.uber.org/zap"
)

// NearbyFinder runs one nearby query.
type NearbyFinder interface {
	FindNearbyUsers(ctx context.Context, requesterID string, loc *proximity.Location, opts proximity.Options) ([]proximity.NearbyCandidate, error)
}

// LocationSource reads and writes the requester's own location.
type LocationSource interface {
	RequesterLocation(userID string) (*proximity.Location, error)
	Update(ctx context.Context, userID string, u service.LocationUpdate) (*models.UserLocation, error)
}

type RadarConfig struct {
	DefaultRadius   float64
	MaxRadius       float64
	DefaultMaxAge   time.Duration
	DefaultLimit    int
	MaxLimit        int
	SmoothingFactor float64
	RescanInterval  time.Duration
	HeadingHz       float64
}

func RadarConfigFrom(p *config.ProximityConfig) RadarConfig {
	return RadarConfig{
		DefaultRadius:   p.DefaultRadiusMeters,
		MaxRadius:       p.MaxRadiusMeters,
		DefaultMaxAge:   p.DefaultMaxAge,
		DefaultLimit:    p.DefaultLimit,
		MaxLimit:        p.MaxLimit,
		SmoothingFactor: p.SmoothingFactor,
		RescanInterval:  p.RescanInterval,
		HeadingHz:       p.HeadingDisplayHz,
	}
}

// clientMessage is any message a radar client sends; Type selects the fields used.
type clientMessage struct {
	Type           string   `json:"type"`
	Degrees        *float64 `json:"degrees"`
	X              *float64 `json:"x"`
	Y              *float64 `json:"y"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	AccuracyMeters float64  `json:"accuracy_meters"`
	RadiusM        *float64 `json:"radius_m"`
	MaxAgeSec      *float64 `json:"max_age_sec"`
	IncludeOffline *bool    `json:"include_offline"`
	Limit          *int     `json:"limit"`
}

type headingMessage struct {
	Type     string  `json:"type"`
	Raw      float64 `json:"raw"`
	Smoothed float64 `json:"smoothed"`
}

type nearbyMessage struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id"`
	RadiusM   float64                `json:"radius_m"`
	Heading   *float64               `json:"heading"`
	Users     []proximity.RadarEntry `json:"users"`
	ScannedAt time.Time              `json:"scanned_at"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Session is one active radar scan. Its state is owned by the Run goroutine.
type Session struct {
	client    *Client
	cfg       RadarConfig
	finder    NearbyFinder
	locations LocationSource
	tracker   *heading.Tracker
	throttle  *heading.Throttle
	opts      proximity.Options
	nudge     chan struct{}
	now       func() time.Time
}

func NewSession(client *Client, cfg RadarConfig, finder NearbyFinder, locations LocationSource) *Session {
	return &Session{
		client:    client,
		cfg:       cfg,
		finder:    finder,
		locations: locations,
		tracker:   heading.NewTracker(cfg.SmoothingFactor),
		throttle:  heading.NewThrottle(cfg.HeadingHz),
		opts: proximity.Options{
			Radius: cfg.DefaultRadius,
			MaxAge: cfg.DefaultMaxAge,
			Limit:  cfg.DefaultLimit,
		},
		nudge: make(chan struct{}, 1),
		now:   time.Now,
	}
}

func (s *Session) ID() string { return s.client.SessionID }

// Nudge requests a rescan without blocking; pending nudges coalesce.
func (s *Session) Nudge() {
	select {
	case s.nudge <- struct{}{}:
	default:
	}
}

// Run scans once, then serves incoming messages, the rescan ticker and nudges
// until ctx ends or incoming is closed.
func (s *Session) Run(ctx context.Context, incoming <-chan []byte) {
	s.scan(ctx)

	interval := s.cfg.RescanInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-incoming:
			if !ok {
				return
			}
			s.handle(ctx, raw)
		case <-ticker.C:
			s.scan(ctx)
		case <-s.nudge:
			s.scan(ctx)
		}
	}
}

func (s *Session) handle(ctx context.Context, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.sendError(domain.CodeInvalidInput, "malformed message")
		return
	}
	switch msg.Type {
	case domain.MsgHeading:
		if msg.Degrees == nil {
			s.sendError(domain.CodeInvalidInput, "degrees required")
			return
		}
		s.onHeading(*msg.Degrees)
	case domain.MsgMagnetometer:
		if msg.X == nil || msg.Y == nil {
			s.sendError(domain.CodeInvalidInput, "x and y required")
			return
		}
		s.onHeading(heading.FromMagnetometer(*msg.X, *msg.Y))
	case domain.MsgLocation:
		if msg.Latitude == nil || msg.Longitude == nil {
			s.sendError(domain.CodeInvalidInput, "latitude and longitude required")
			return
		}
		_, err := s.locations.Update(ctx, s.client.UserID, service.LocationUpdate{
			Latitude:       *msg.Latitude,
			Longitude:      *msg.Longitude,
			AccuracyMeters: msg.AccuracyMeters,
		})
		if err != nil {
			s.sendFailure(err)
			return
		}
		s.scan(ctx)
		// Our own write nudged us through the hub; that scan already happened.
		select {
		case <-s.nudge:
		default:
		}
	case domain.MsgOptions:
		if err := s.applyOptions(msg); err != nil {
			s.sendError(domain.CodeInvalidInput, err.Error())
			return
		}
		s.scan(ctx)
	default:
		s.sendError(domain.CodeInvalidInput, "unknown message type")
	}
}

func (s *Session) onHeading(raw float64) {
	smoothed := s.tracker.Update(raw)
	if !s.tracker.Started() || !s.throttle.Allow(s.now()) {
		return
	}
	s.send(headingMessage{Type: domain.MsgHeading, Raw: s.tracker.State().RawHeadingDegrees, Smoothed: smoothed})
}

var errBadOptions = errors.New("invalid radar options")

func (s *Session) applyOptions(msg clientMessage) error {
	next := s.opts
	if msg.RadiusM != nil {
		r := *msg.RadiusM
		if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
			return errBadOptions
		}
		next.Radius = math.Min(r, s.cfg.MaxRadius)
	}
	if msg.MaxAgeSec != nil {
		a := *msg.MaxAgeSec
		if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
			return errBadOptions
		}
		next.MaxAge = time.Duration(a * float64(time.Second))
	}
	if msg.IncludeOffline != nil {
		next.IncludeOffline = *msg.IncludeOffline
	}
	if msg.Limit != nil {
		if *msg.Limit < 0 {
			return errBadOptions
		}
		next.Limit = *msg.Limit
		if s.cfg.MaxLimit > 0 && (next.Limit == 0 || next.Limit > s.cfg.MaxLimit) {
			next.Limit = s.cfg.MaxLimit
		}
	}
	s.opts = next
	return nil
}

func (s *Session) scan(ctx context.Context) {
	loc, err := s.locations.RequesterLocation(s.client.UserID)
	if err != nil {
		logger.Error("radar: load own location", zap.String("session_id", s.ID()), zap.Error(err))
		s.sendError(domain.CodeInternal, "could not load your location")
		return
	}
	cands, err := s.finder.FindNearbyUsers(ctx, s.client.UserID, loc, s.opts)
	if err != nil {
		s.sendFailure(err)
		return
	}
	var h *float64
	if s.tracker.Started() {
		v := s.tracker.Smoothed()
		h = &v
	}
	s.send(nearbyMessage{
		Type:      domain.MsgNearby,
		SessionID: s.ID(),
		RadiusM:   s.opts.Radius,
		Heading:   h,
		Users:     proximity.Radar(cands, s.opts.Radius, h),
		ScannedAt: s.now().UTC(),
	})
}

func (s *Session) sendFailure(err error) {
	switch {
	case errors.Is(err, proximity.ErrLocationUnavailable):
		s.sendError(domain.CodeLocationUnavailable, "share your location to see people nearby")
	case errors.Is(err, proximity.ErrCandidatePoolFetch):
		s.sendError(domain.CodePoolUnavailable, "nearby search is temporarily unavailable")
	case errors.Is(err, proximity.ErrInvalidLocation), errors.Is(err, proximity.ErrInvalidOptions):
		s.sendError(domain.CodeInvalidInput, err.Error())
	case errors.Is(err, repository.ErrStaleLocation):
		s.sendError(domain.CodeStaleLocation, err.Error())
	default:
		logger.Error("radar: request failed", zap.String("session_id", s.ID()), zap.Error(err))
		s.sendError(domain.CodeInternal, "internal error")
	}
}

func (s *Session) sendError(code, msg string) {
	s.send(errorMessage{Type: domain.MsgError, Code: code, Error: msg})
}

func (s *Session) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("radar: marshal message", zap.Error(err))
		return
	}
	if !s.client.Enqueue(data) {
		logger.Debug("radar: dropped message", zap.String("session_id", s.ID()))
	}
}
