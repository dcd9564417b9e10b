package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

// SupplierOffer is a zone-scoped group-buy listing for one product. The
// running aggregate and the unit price implied by it are snapshotted on the
// row, so listings and re-pricing never re-walk order items.
type SupplierOffer struct {
	ID                   uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID            uuid.UUID         `gorm:"column:product_id;type:uuid;not null;index"`
	SupplierID           uuid.UUID         `gorm:"column:supplier_id;type:uuid;not null;index"`
	ZoneID               uuid.UUID         `gorm:"column:zone_id;type:uuid;not null;index"`
	ProductName          string            `gorm:"column:product_name;type:text;not null"`
	ProductBrand         string            `gorm:"column:product_brand;type:text"`
	ProductUnit          string            `gorm:"column:product_unit;type:text"`
	SupplierName         string            `gorm:"column:supplier_name;type:text;not null"`
	SupplierCode         string            `gorm:"column:supplier_code;type:text"`
	QuantitySlabs        types.SlabList    `gorm:"column:quantity_slabs;type:jsonb;serializer:json"`
	MinFulfillmentQty    int               `gorm:"column:min_fulfillment_qty;not null"`
	LeadTimeDays         int               `gorm:"column:lead_time_days;not null;default:0"`
	CurrentAggregatedQty int               `gorm:"column:current_aggregated_qty;not null;default:0"`
	CurrentPricePerUnit  decimal.Decimal   `gorm:"column:current_price_per_unit;type:numeric(12,2);not null"`
	Status               enums.OfferStatus `gorm:"column:status;type:text;not null;default:'open';index"`
	IsActive             bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
