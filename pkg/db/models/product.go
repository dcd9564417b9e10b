package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Brand       string    `gorm:"column:brand;type:text;not null;index"`
	Barcode     string    `gorm:"column:barcode;type:text"`
	Unit        string    `gorm:"column:unit;type:text;not null"`
	Category    string    `gorm:"column:category;type:text;not null;index"`
	Description string    `gorm:"column:description;type:text"`
	ImageURL    string    `gorm:"column:image_url;type:text"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
