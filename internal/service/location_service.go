package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/domain"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/logger"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/repository"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/location"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidStatus = errors.New("invalid presence status")

// LocationNotifier is told when a user's stored location or presence changes.
type LocationNotifier interface {
	NotifyLocationChanged(userID string)
}

type LocationUpdate struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	// Client fix time; zero means now. Future times are clamped to now.
	RecordedAt time.Time
	Visible    *bool
}

// LocationService owns writes of location and presence. SQL is the source of
// truth; mirrors are best effort.
type LocationService struct {
	users     *repository.UserRepository
	locations *repository.LocationRepository
	presence  *repository.PresenceRepository
	mirrors   []LocationMirror
	notifier  LocationNotifier
	now       func() time.Time
}

func NewLocationService(users *repository.UserRepository, locations *repository.LocationRepository, presence *repository.PresenceRepository, mirrors ...LocationMirror) *LocationService {
	return &LocationService{
		users:     users,
		locations: locations,
		presence:  presence,
		mirrors:   mirrors,
		now:       time.Now,
	}
}

// SetNotifier wires the radar hub after construction (the hub needs the services first).
func (s *LocationService) SetNotifier(n LocationNotifier) { s.notifier = n }

func (s *LocationService) Update(ctx context.Context, userID string, u LocationUpdate) (*models.UserLocation, error) {
	if !location.ValidCoordinates(u.Latitude, u.Longitude) {
		return nil, fmt.Errorf("%w: (%v, %v)", proximity.ErrInvalidLocation, u.Latitude, u.Longitude)
	}
	now := s.now().UTC()
	recorded := u.RecordedAt.UTC()
	if recorded.IsZero() || recorded.After(now) {
		recorded = now
	}

	if _, err := s.users.GetOrCreate(userID); err != nil {
		return nil, err
	}
	visible := true
	if prev, err := s.locations.GetByUserID(userID); err == nil {
		visible = prev.IsLocationVisible
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if u.Visible != nil {
		visible = *u.Visible
	}

	loc := &models.UserLocation{
		UserID:            userID,
		Latitude:          u.Latitude,
		Longitude:         u.Longitude,
		AccuracyMeters:    u.AccuracyMeters,
		IsLocationVisible: visible,
		RecordedAt:        recorded,
		LastUpdatedAt:     now,
	}
	if err := s.locations.Upsert(loc); err != nil {
		return nil, err
	}

	s.mirror(ctx, userID, loc)
	s.notify(userID)
	return loc, nil
}

// Current returns the stored fix, or nil when the user has none.
func (s *LocationService) Current(userID string) (*models.UserLocation, error) {
	loc, err := s.locations.GetByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// RequesterLocation is the stored fix in proximity form, nil when unknown.
func (s *LocationService) RequesterLocation(userID string) (*proximity.Location, error) {
	loc, err := s.Current(userID)
	if err != nil || loc == nil {
		return nil, err
	}
	return &proximity.Location{Latitude: loc.Latitude, Longitude: loc.Longitude, Timestamp: loc.RecordedAt}, nil
}

// Clear forgets the user's location in every store.
func (s *LocationService) Clear(ctx context.Context, userID string) error {
	if err := s.locations.Clear(userID); err != nil {
		return err
	}
	for _, m := range s.mirrors {
		if err := m.RemoveLocation(ctx, userID); err != nil {
			logger.Warn("mirror location clear failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	s.notify(userID)
	return nil
}

// SetVisibility hides or re-shows the stored fix without moving it.
func (s *LocationService) SetVisibility(ctx context.Context, userID string, visible bool) error {
	if err := s.locations.SetVisibility(userID, visible); err != nil {
		return err
	}
	return s.Refresh(ctx, userID)
}

// Refresh re-publishes the stored fix, e.g. after a profile edit.
func (s *LocationService) Refresh(ctx context.Context, userID string) error {
	loc, err := s.Current(userID)
	if err != nil || loc == nil {
		return err
	}
	s.mirror(ctx, userID, loc)
	s.notify(userID)
	return nil
}

func (s *LocationService) SetPresence(ctx context.Context, userID, status string) (*models.UserPresence, error) {
	switch status {
	case domain.PresenceOnline, domain.PresenceOffline, domain.PresenceBusy:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if _, err := s.users.GetOrCreate(userID); err != nil {
		return nil, err
	}
	p, err := s.presence.SetStatus(userID, status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, m := range s.mirrors {
		if err := m.SetOnline(ctx, userID, p.IsOnline, p.LastSeenAt); err != nil {
			logger.Warn("mirror presence failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	s.notify(userID)
	return p, nil
}

// Presence returns the stored presence, or an OFFLINE placeholder.
func (s *LocationService) Presence(userID string) (*models.UserPresence, error) {
	p, err := s.presence.GetByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserPresence{UserID: userID, Status: domain.PresenceOffline}, nil
	}
	return p, err
}

func (s *LocationService) mirror(ctx context.Context, userID string, loc *models.UserLocation) {
	if len(s.mirrors) == 0 {
		return
	}
	if !loc.IsLocationVisible {
		for _, m := range s.mirrors {
			if err := m.RemoveLocation(ctx, userID); err != nil {
				logger.Warn("mirror location remove failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
		return
	}
	rec := proximity.UserLocationRecord{
		UserID: userID,
		Location: proximity.Location{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Timestamp: loc.RecordedAt,
		},
		LastSeen: loc.LastUpdatedAt,
	}
	if u, err := s.users.GetByID(userID); err == nil {
		rec.Name = u.Name()
		rec.PhotoURL = u.PhotoURL
		rec.Bio = u.Bio
		rec.Age = u.Age(s.now())
	}
	if p, err := s.presence.GetByUserID(userID); err == nil {
		rec.IsOnline = p.IsOnline
	}
	for _, m := range s.mirrors {
		if err := m.PutLocation(ctx, rec, loc.AccuracyMeters); err != nil {
			logger.Warn("mirror location failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func (s *LocationService) notify(userID string) {
	if s.notifier != nil {
		s.notifier.NotifyLocationChanged(userID)
	}
}
