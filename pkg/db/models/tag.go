package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is a shared, name-keyed tag linked to products.
type Ingredient struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:ingredients_name_key" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (i *Ingredient) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// DietaryRestriction is a shared, name-keyed tag such as "Vegano".
type DietaryRestriction struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:dietary_restrictions_name_key" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (d *DietaryRestriction) BeforeCreate(*gorm.DB) error {
	assignID(&d.ID)
	return nil
}
