package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/logger"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/metrics"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/location"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"go.uber.org/zap"
)

// BlockLister returns the users hidden from userID in either direction.
type BlockLister interface {
	HiddenFrom(userID string) (map[string]struct{}, error)
}

// ProximityService answers "who is near me" against a candidate pool.
type ProximityService struct {
	pool       proximity.CandidatePool
	blocks     BlockLister
	fuzzMeters float64
	now        func() time.Time
	rnd        func() float64
}

func NewProximityService(pool proximity.CandidatePool, blocks BlockLister, fuzzMeters float64) *ProximityService {
	return &ProximityService{
		pool:       pool,
		blocks:     blocks,
		fuzzMeters: fuzzMeters,
		now:        time.Now,
		rnd:        rand.Float64,
	}
}

// FindNearbyUsers fetches the pool around loc and filters it for requesterID.
// A nil loc yields proximity.ErrLocationUnavailable, never an empty list.
func (s *ProximityService) FindNearbyUsers(ctx context.Context, requesterID string, loc *proximity.Location, opts proximity.Options) ([]proximity.NearbyCandidate, error) {
	opts.UserID = requesterID
	if err := proximity.Validate(loc, opts); err != nil {
		if errors.Is(err, proximity.ErrLocationUnavailable) {
			metrics.ProximityQueries.WithLabelValues(metrics.ResultLocationUnavailable).Inc()
		} else {
			metrics.ProximityQueries.WithLabelValues(metrics.ResultInvalid).Inc()
		}
		return nil, err
	}

	if s.blocks != nil {
		hidden, err := s.blocks.HiddenFrom(requesterID)
		if err != nil {
			metrics.ProximityQueries.WithLabelValues(metrics.ResultPoolError).Inc()
			return nil, fmt.Errorf("load blocked users: %w", err)
		}
		if len(hidden) > 0 {
			merged := make(map[string]struct{}, len(hidden)+len(opts.Exclude))
			for id := range opts.Exclude {
				merged[id] = struct{}{}
			}
			for id := range hidden {
				merged[id] = struct{}{}
			}
			opts.Exclude = merged
		}
	}

	records, err := s.pool.Candidates(ctx, proximity.PoolQuery{
		RequesterID:  requesterID,
		Center:       *loc,
		RadiusMeters: opts.Radius,
	})
	if err != nil {
		metrics.ProximityQueries.WithLabelValues(metrics.ResultPoolError).Inc()
		logger.Error("candidate pool fetch failed", zap.String("user_id", requesterID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", proximity.ErrCandidatePoolFetch, err)
	}
	metrics.ProximityPoolSize.Observe(float64(len(records)))

	out, err := proximity.Filter(s.now(), loc, opts, records)
	if err != nil {
		metrics.ProximityQueries.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}
	s.obfuscate(out)

	metrics.ProximityQueries.WithLabelValues(metrics.ResultOK).Inc()
	metrics.ProximityCandidates.Observe(float64(len(out)))
	logger.Debug("nearby query",
		zap.String("user_id", requesterID),
		zap.Float64("radius_m", opts.Radius),
		zap.Int("pool", len(records)),
		zap.Int("returned", len(out)),
	)
	return out, nil
}

// obfuscate jitters the coordinates handed to clients. Distance and bearing stay exact.
func (s *ProximityService) obfuscate(cs []proximity.NearbyCandidate) {
	if s.fuzzMeters <= 0 {
		return
	}
	for i := range cs {
		cs[i].Location.Latitude += location.MetersToDegrees(s.fuzzMeters * (2*s.rnd() - 1))
		cs[i].Location.Longitude += location.MetersToDegrees(s.fuzzMeters * (2*s.rnd() - 1))
	}
}
