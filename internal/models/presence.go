package models

import (
	"time"
)

type UserPresence struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"uniqueIndex;size:128;not null" json:"user_id"`
	Status     string    `gorm:"size:20;not null;index" json:"status"` // ONLINE, OFFLINE, BUSY
	IsOnline   bool      `gorm:"default:false;index" json:"is_online"`
	LastSeenAt time.Time `gorm:"not null;index" json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (UserPresence) TableName() string {
	return "user_presence"
}
