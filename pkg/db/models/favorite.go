package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite links a user to a product they saved.
type Favorite struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Favorite) TableName() string { return "user_favorites" }
