package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

// RecordPaymentInput captures an admin recording money collected for an order.
type RecordPaymentInput struct {
	OrderItemID     uuid.UUID
	Amount          decimal.Decimal
	Method          string
	ReferenceNumber string
}

// PaymentRecordedEvent is emitted when a payment enters the lock window.
type PaymentRecordedEvent struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	OrderItemID   uuid.UUID       `json:"order_item_id"`
	RetailerID    uuid.UUID       `json:"retailer_id"`
	SupplierName  string          `json:"supplier_name"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	LockExpiresAt time.Time       `json:"lock_expires_at"`
}

// PaymentReleasedEvent is emitted when the lock window lapses without dispute
// or a dispute resolves in the supplier's favor.
type PaymentReleasedEvent struct {
	PaymentID  uuid.UUID       `json:"payment_id"`
	RetailerID uuid.UUID       `json:"retailer_id"`
	Amount     decimal.Decimal `json:"amount"`
	ReleasedAt time.Time       `json:"released_at"`
}

// PaymentDisputedEvent is emitted when a retailer disputes inside the window.
type PaymentDisputedEvent struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	RetailerID   uuid.UUID       `json:"retailer_id"`
	RetailerName string          `json:"retailer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
}

// DisputeResolvedEvent is emitted when an admin settles a dispute.
type DisputeResolvedEvent struct {
	PaymentID  uuid.UUID           `json:"payment_id"`
	RetailerID uuid.UUID           `json:"retailer_id"`
	Resolution enums.PaymentStatus `json:"resolution"`
	Note       string              `json:"note"`
}
