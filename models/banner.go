package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Banner represents a homepage banner
type Banner struct {
	BaseModel
	Title              string `gorm:"type:varchar(200);not null" json:"title"`
	Subtitle           string `gorm:"type:varchar(500)" json:"subtitle,omitempty"`
	BackgroundImageURL string `gorm:"type:varchar(500)" json:"background_image_url,omitempty"`
	BackgroundStyle    string `gorm:"type:varchar(100);default:'default'" json:"background_style"`
	DisplayOrder       int    `gorm:"not null;default:0" json:"display_order"`
	IsActive           bool   `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate is a GORM hook that runs before creating a new record
func (b *Banner) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
