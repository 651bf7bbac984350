package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promotion carries exactly one of DiscountPercentage or DiscountAmount.
type Promotion struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Title              string              `gorm:"column:title;not null"`
	Description        *string             `gorm:"column:description"`
	DiscountPercentage decimal.NullDecimal `gorm:"column:discount_percentage;type:numeric(5,2)"`
	DiscountAmount     decimal.NullDecimal `gorm:"column:discount_amount;type:numeric(12,2)"`
	StartDate          *time.Time          `gorm:"column:start_date"`
	EndDate            *time.Time          `gorm:"column:end_date"`
	PhotoURL           *string             `gorm:"column:photo_url"`
	IsActive           bool                `gorm:"column:is_active;not null;index"`
	Products           []PromotionProduct  `gorm:"foreignKey:PromotionID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Promotion) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// PromotionProduct binds a product and the quantity bundled in the promotion.
type PromotionProduct struct {
	PromotionID         uuid.UUID `gorm:"column:promotion_id;type:uuid;primaryKey"`
	ProductID           uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	QuantityInPromotion int       `gorm:"column:quantity_in_promotion;not null;default:1"`
}
