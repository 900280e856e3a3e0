package repository

import (
	"github.com/NguyenDuong24/ChappAt-sub000/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create is idempotent; blocking an already blocked user is a no-op.
func (r *BlockRepository) Create(b *models.Block) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

func (r *BlockRepository) Delete(blockerID, blockedID string) error {
	return r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Delete(&models.Block{}).Error
}

func (r *BlockRepository) IsBlocked(blockerID, blockedID string) (bool, error) {
	var c int64
	err := r.db.Model(&models.Block{}).Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).Count(&c).Error
	return c > 0, err
}

// HiddenFrom returns every user id that blocked userID or was blocked by them.
func (r *BlockRepository) HiddenFrom(userID string) (map[string]struct{}, error) {
	var blocks []models.Block
	err := r.db.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		if b.BlockerID == userID {
			out[b.BlockedID] = struct{}{}
		} else {
			out[b.BlockerID] = struct{}{}
		}
	}
	return out, nil
}
