package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

// OrderItem is one retailer's commitment against an offer. Catalog names are
// denormalized at placement so order history survives catalog edits.
// PricePerUnit and TotalAmount track the group aggregate and are rewritten
// whenever the offer's price tier changes.
type OrderItem struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfferID      uuid.UUID             `gorm:"column:offer_id;type:uuid;not null;index"`
	RetailerID   uuid.UUID             `gorm:"column:retailer_id;type:uuid;not null;index"`
	RetailerName string                `gorm:"column:retailer_name;type:text;not null"`
	ZoneID       uuid.UUID             `gorm:"column:zone_id;type:uuid;not null;index"`
	ProductID    uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string                `gorm:"column:product_name;type:text;not null"`
	ProductBrand string                `gorm:"column:product_brand;type:text"`
	ProductUnit  string                `gorm:"column:product_unit;type:text"`
	SupplierID   uuid.UUID             `gorm:"column:supplier_id;type:uuid;not null"`
	SupplierName string                `gorm:"column:supplier_name;type:text;not null"`
	SupplierCode string                `gorm:"column:supplier_code;type:text"`
	Quantity     int                   `gorm:"column:quantity;not null"`
	PricePerUnit decimal.Decimal       `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	TotalAmount  decimal.Decimal       `gorm:"column:total_amount;type:numeric(14,2);not null"`
	Status       enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
