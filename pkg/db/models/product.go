package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ilumina/storefront-backend/pkg/types"
)

// Product is a sellable catalog entry. Quantity is the on-hand stock and is
// only lowered by order placement or an explicit admin edit.
type Product struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ProductCode     *string               `gorm:"column:product_code;uniqueIndex:products_product_code_key"`
	Title           string                `gorm:"column:title;not null"`
	Description     *string               `gorm:"column:description"`
	Price           decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	CostPrice       decimal.Decimal       `gorm:"column:cost_price;type:numeric(12,2);not null"`
	PhotoURL        *string               `gorm:"column:photo_url"`
	Quantity        int                   `gorm:"column:quantity;not null;default:0"`
	Category        string                `gorm:"column:category;not null;index"`
	NutritionalInfo types.NutritionalInfo `gorm:"column:nutritional_info;type:text"`
	IsActive        bool                  `gorm:"column:is_active;not null"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// ProductIngredient is the join row between products and ingredients.
type ProductIngredient struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	IngredientID uuid.UUID `gorm:"column:ingredient_id;type:uuid;primaryKey"`
}

// ProductDietaryRestriction is the join row between products and dietary restrictions.
type ProductDietaryRestriction struct {
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	RestrictionID uuid.UUID `gorm:"column:restriction_id;type:uuid;primaryKey"`
}
