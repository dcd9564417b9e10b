package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

// Zone is a geographic catchment area grouping nearby retailers. Zones are
// created lazily when a retailer registers outside all existing coverage and
// are only ever soft-deactivated.
type Zone struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string         `gorm:"column:name;type:text;not null"`
	Center        types.Location `gorm:"embedded;embeddedPrefix:center_"`
	RadiusKm      float64        `gorm:"column:radius_km;not null"`
	RetailerCount int            `gorm:"column:retailer_count;not null;default:0"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
}
