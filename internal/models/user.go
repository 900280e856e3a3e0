package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the profile side of an account. The ID is the identity provider's
// subject (e.g. a Firebase uid); accounts are created lazily on first write.
type User struct {
	ID          string         `gorm:"primaryKey;size:128" json:"id"`
	Username    string         `gorm:"size:64;index" json:"username"`
	DisplayName string         `gorm:"size:128" json:"display_name"`
	Bio         string         `gorm:"size:1024" json:"bio"`
	PhotoURL    string         `gorm:"size:512" json:"photo_url"`
	DateOfBirth *time.Time     `json:"date_of_birth"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Location *UserLocation `gorm:"foreignKey:UserID" json:"location,omitempty"`
	Presence *UserPresence `gorm:"foreignKey:UserID" json:"presence,omitempty"`
}

// Name prefers the display name and falls back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Age returns age in years at t, or 0 when no date of birth is set.
func (u *User) Age(t time.Time) int {
	return AgeAt(u.DateOfBirth, t)
}

func AgeAt(dob *time.Time, t time.Time) int {
	if dob == nil {
		return 0
	}
	age := t.Year() - dob.Year()
	if t.YearDay() < dob.YearDay() {
		age--
	}
	return age
}
