package models

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a catalog identity referenced from offers. Its name and code
// are denormalized into offers and order items at creation time.
type Supplier struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Code        string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	Description string    `gorm:"column:description;type:text"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
