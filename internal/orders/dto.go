package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

// PlaceOrderInput captures a retailer's request to join an offer.
type PlaceOrderInput struct {
	Phone    string
	OfferID  uuid.UUID
	Quantity int
}

// PlaceOrderResult reports the placement outcome, including the post-order
// aggregate the whole group is now priced at.
type PlaceOrderResult struct {
	OrderID          uuid.UUID         `json:"order_id"`
	Quantity         int               `json:"quantity"`
	PricePerUnit     decimal.Decimal   `json:"price_per_unit"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	NewAggregatedQty int               `json:"new_aggregated_qty"`
	OfferStatus      enums.OfferStatus `json:"offer_status"`
}

// OrderDetails is an order item joined with the live state of its offer.
type OrderDetails struct {
	models.OrderItem
	ZoneName                string            `json:"zone_name"`
	OfferStatus             enums.OfferStatus `json:"offer_status"`
	OfferAggregatedQty      int               `json:"offer_aggregated_qty"`
	OfferMinFulfillmentQty  int               `json:"offer_min_fulfillment_qty"`
	OfferProgressPercentage float64           `json:"offer_progress_percentage"`
}

// OrderPlacedEvent is emitted after every successful placement.
type OrderPlacedEvent struct {
	OrderID          uuid.UUID       `json:"order_id"`
	OfferID          uuid.UUID       `json:"offer_id"`
	ZoneID           uuid.UUID       `json:"zone_id"`
	RetailerID       uuid.UUID       `json:"retailer_id"`
	RetailerName     string          `json:"retailer_name"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	PricePerUnit     decimal.Decimal `json:"price_per_unit"`
	NewAggregatedQty int             `json:"new_aggregated_qty"`
}

// PriceDroppedEvent is emitted when a placement pushes the group into a
// cheaper tier. The triggering retailer is carried so zone fan-out can skip
// notifying them about their own order.
type PriceDroppedEvent struct {
	OfferID             uuid.UUID       `json:"offer_id"`
	ZoneID              uuid.UUID       `json:"zone_id"`
	ProductName         string          `json:"product_name"`
	OldPricePerUnit     decimal.Decimal `json:"old_price_per_unit"`
	NewPricePerUnit     decimal.Decimal `json:"new_price_per_unit"`
	TriggeredByRetailer uuid.UUID       `json:"triggered_by_retailer"`
}
