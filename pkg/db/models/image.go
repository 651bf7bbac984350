package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is an uploaded asset served from the local upload directory.
type Image struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	URL        string    `gorm:"column:url;not null;uniqueIndex:images_url_key" json:"url"`
	AltText    *string   `gorm:"column:alt_text" json:"alt_text,omitempty"`
	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
}

func (i *Image) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
