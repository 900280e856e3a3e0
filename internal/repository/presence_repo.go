package repository

import (
	"errors"
	"time"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/domain"
	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"

	"gorm.io/gorm"
)

type PresenceRepository struct {
	db *gorm.DB
}

func NewPresenceRepository(db *gorm.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

func (r *PresenceRepository) Upsert(p *models.UserPresence) error {
	var existing models.UserPresence
	err := r.db.Where("user_id = ?", p.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(p).Error
	}
	if err != nil {
		return err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	return r.db.Save(p).Error
}

// SetStatus records status at the given time. Only ONLINE counts as online.
func (r *PresenceRepository) SetStatus(userID, status string, at time.Time) (*models.UserPresence, error) {
	p := &models.UserPresence{
		UserID:     userID,
		Status:     status,
		IsOnline:   status == domain.PresenceOnline,
		LastSeenAt: at,
	}
	if err := r.Upsert(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PresenceRepository) GetByUserID(userID string) (*models.UserPresence, error) {
	var p models.UserPresence
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}
