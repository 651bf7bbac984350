package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a delivery address owned by one user.
type Address struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Street       string    `gorm:"column:street;not null" json:"street"`
	Number       *string   `gorm:"column:number" json:"number,omitempty"`
	Complement   *string   `gorm:"column:complement" json:"complement,omitempty"`
	Neighborhood *string   `gorm:"column:neighborhood" json:"neighborhood,omitempty"`
	City         string    `gorm:"column:city;not null" json:"city"`
	State        string    `gorm:"column:state;not null" json:"state"`
	ZipCode      string    `gorm:"column:zip_code;not null" json:"zip_code"`
	IsDefault    bool      `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Address) TableName() string { return "user_addresses" }

func (a *Address) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
