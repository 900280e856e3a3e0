package models

import (
	"time"
)

// UserLocation stores the last known fix of a user.
// Separate lat/lng columns keep the bounding-box pre-filter portable.
type UserLocation struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            string    `gorm:"uniqueIndex;size:128;not null" json:"user_id"`
	Latitude          float64   `gorm:"type:decimal(10,8);not null;index:idx_location_lat_lng" json:"latitude"`
	Longitude         float64   `gorm:"type:decimal(11,8);not null;index:idx_location_lat_lng" json:"longitude"`
	AccuracyMeters    float64   `gorm:"type:decimal(8,2)" json:"accuracy_meters"`
	IsLocationVisible bool      `gorm:"not null" json:"is_location_visible"`
	RecordedAt        time.Time `gorm:"not null" json:"recorded_at"`
	LastUpdatedAt     time.Time `gorm:"not null;index" json:"last_updated_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (UserLocation) TableName() string {
	return "user_locations"
}
