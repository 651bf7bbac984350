package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups subcategories for navigation; products reference a
// subcategory by name only.
type Category struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"column:name;not null;uniqueIndex:categories_name_key" json:"name"`
	OrderIndex    int           `gorm:"column:order_index;not null;default:0" json:"order_index"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"subcategories"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Subcategory names are unique within their category.
type Subcategory struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:subcategories_category_name_key" json:"category_id"`
	Name       string    `gorm:"column:name;not null;uniqueIndex:subcategories_category_name_key" json:"name"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (s *Subcategory) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
