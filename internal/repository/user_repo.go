package repository

import (
	"errors"

	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var u models.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreate returns the user row for id, inserting an empty profile on first sight.
func (r *UserRepository) GetOrCreate(id string) (*models.User, error) {
	u, err := r.GetByID(id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	u = &models.User{ID: id}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(u).Error; err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}
