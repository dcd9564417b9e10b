package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

// Retailer is a shop owner identified by phone. Zone membership is assigned
// once at registration from the shop location and never changes on profile
// edits.
type Retailer struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Phone     string         `gorm:"column:phone;type:text;not null;uniqueIndex"`
	Name      string         `gorm:"column:name;type:text;not null"`
	ShopName  string         `gorm:"column:shop_name;type:text;not null"`
	Address   string         `gorm:"column:address;type:text"`
	Location  types.Location `gorm:"embedded;embeddedPrefix:location_"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// RetailerZone links a retailer to every zone whose radius covers the shop
// location at registration time.
type RetailerZone struct {
	RetailerID uuid.UUID `gorm:"column:retailer_id;type:uuid;primaryKey"`
	ZoneID     uuid.UUID `gorm:"column:zone_id;type:uuid;primaryKey;index"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RetailerZone) TableName() string { return "retailer_zones" }
