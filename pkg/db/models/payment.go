package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

// Payment records money collected against a delivered order item, one per
// order. A payment starts locked for a fixed dispute window and is released
// to the supplier once the window lapses without a dispute.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID     uuid.UUID           `gorm:"column:order_item_id;type:uuid;not null;uniqueIndex"`
	RetailerID      uuid.UUID           `gorm:"column:retailer_id;type:uuid;not null;index"`
	RetailerName    string              `gorm:"column:retailer_name;type:text;not null"`
	SupplierID      uuid.UUID           `gorm:"column:supplier_id;type:uuid;not null;index"`
	SupplierName    string              `gorm:"column:supplier_name;type:text;not null"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null"`
	Method          enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	ReferenceNumber string              `gorm:"column:reference_number;type:text"`
	Status          enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'locked';index"`
	LockExpiresAt   time.Time           `gorm:"column:lock_expires_at;not null;index"`
	ReleasedAt      *time.Time          `gorm:"column:released_at"`
	DisputeReason   string              `gorm:"column:dispute_reason;type:text"`
	DisputeRaisedAt *time.Time          `gorm:"column:dispute_raised_at"`
	ResolvedAt      *time.Time          `gorm:"column:resolved_at"`
	Notes           string              `gorm:"column:notes;type:text"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
