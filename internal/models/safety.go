package models

import (
	"time"
)

// Block hides two users from each other's nearby results, in both directions.
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID string    `gorm:"size:128;not null;index:idx_block_pair,unique" json:"blocker_id"`
	BlockedID string    `gorm:"size:128;not null;index:idx_block_pair,unique;index" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Block) TableName() string {
	return "blocks"
}
