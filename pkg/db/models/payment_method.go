package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethod stores a tokenized payment reference; raw card numbers are never persisted.
type PaymentMethod struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	MethodType     string    `gorm:"column:method_type;not null" json:"method_type"`
	CardType       *string   `gorm:"column:card_type" json:"card_type,omitempty"`
	CardBrand      *string   `gorm:"column:card_brand" json:"card_brand,omitempty"`
	LastFourDigits *string   `gorm:"column:last_four_digits" json:"last_four_digits,omitempty"`
	TokenizedData  *string   `gorm:"column:tokenized_data" json:"-"`
	IsDefault      bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PaymentMethod) TableName() string { return "user_payment_methods" }

func (p *PaymentMethod) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
