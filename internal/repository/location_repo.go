package repository

import (
	"context"
	"errors"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/location"
	"github.com/NguyenDuong24/ChappAt-sub000/pkg/proximity"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db, now: time.Now}
}

// Upsert stores loc as the user's current fix. A fix recorded before the stored one
// is rejected with ErrStaleLocation so out-of-order writes never move a user backwards.
func (r *LocationRepository) Upsert(loc *models.UserLocation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.UserLocation
		err := tx.Where("user_id = ?", loc.UserID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(loc).Error
		}
		if err != nil {
			return err
		}
		if loc.RecordedAt.Before(existing.RecordedAt) {
			return ErrStaleLocation
		}
		loc.ID = existing.ID
		loc.CreatedAt = existing.CreatedAt
		return tx.Save(loc).Error
	})
}

func (r *LocationRepository) GetByUserID(userID string) (*models.UserLocation, error) {
	var loc models.UserLocation
	err := r.db.Where("user_id = ?", userID).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Clear removes the stored fix. Clearing an unknown user is not an error.
func (r *LocationRepository) Clear(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.UserLocation{}).Error
}

// SetVisibility toggles whether the stored fix is offered to other users.
func (r *LocationRepository) SetVisibility(userID string, visible bool) error {
	return r.db.Model(&models.UserLocation{}).
		Where("user_id = ?", userID).
		Update("is_location_visible", visible).Error
}

type candidateRow struct {
	UserID        string
	Latitude      float64
	Longitude     float64
	RecordedAt    time.Time
	LastUpdatedAt time.Time
	Username      string
	DisplayName   string
	Bio           string
	PhotoURL      string
	DateOfBirth   *time.Time
	IsOnline      *bool
}

// Candidates implements proximity.CandidatePool. The bounding box only narrows the scan;
// exact distance, freshness and presence rules are applied by proximity.Filter.
func (r *LocationRepository) Candidates(ctx context.Context, q proximity.PoolQuery) ([]proximity.UserLocationRecord, error) {
	minLat, minLng, maxLat, maxLng := location.BoundingBox(q.Center.Latitude, q.Center.Longitude, q.RadiusMeters)

	var rows []candidateRow
	err := r.db.WithContext(ctx).Table("user_locations ul").
		Select(`
			ul.user_id, ul.latitude, ul.longitude, ul.recorded_at, ul.last_updated_at,
			u.username, u.display_name, u.bio, u.photo_url, u.date_of_birth,
			up.is_online
		`).
		Joins("INNER JOIN users u ON u.id = ul.user_id AND u.deleted_at IS NULL").
		Joins("LEFT JOIN user_presence up ON up.user_id = ul.user_id").
		Where("ul.is_location_visible = ?", true).
		Where("ul.user_id <> ?", q.RequesterID).
		Where("ul.latitude BETWEEN ? AND ? AND ul.longitude BETWEEN ? AND ?", minLat, maxLat, minLng, maxLng).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	now := r.now()
	out := make([]proximity.UserLocationRecord, 0, len(rows))
	for _, row := range rows {
		u := models.User{Username: row.Username, DisplayName: row.DisplayName}
		out = append(out, proximity.UserLocationRecord{
			UserID: row.UserID,
			Location: proximity.Location{
				Latitude:  row.Latitude,
				Longitude: row.Longitude,
				Timestamp: row.RecordedAt,
			},
			LastSeen: row.LastUpdatedAt,
			IsOnline: row.IsOnline != nil && *row.IsOnline,
			PhotoURL: row.PhotoURL,
			Name:     u.Name(),
			Age:      models.AgeAt(row.DateOfBirth, now),
			Bio:      row.Bio,
		})
	}
	return out, nil
}
