package offers

import (
	"github.com/google/uuid"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
)

// OfferDetails is the listing/detail view of an offer with zone context and
// fulfillment progress.
type OfferDetails struct {
	models.SupplierOffer
	ZoneName           string  `json:"zone_name"`
	ProductCategory    string  `json:"product_category,omitempty"`
	ProductImageURL    string  `json:"product_image_url,omitempty"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// CreateOfferInput carries the admin offer-create payload.
type CreateOfferInput struct {
	ProductID         uuid.UUID
	SupplierID        uuid.UUID
	ZoneID            uuid.UUID
	QuantitySlabs     []SlabInput
	MinFulfillmentQty int
	LeadTimeDays      int
}

// SlabInput is one quantity tier as submitted by the caller.
type SlabInput struct {
	MinQty       int     `json:"min_qty"`
	MaxQty       *int    `json:"max_qty,omitempty"`
	PricePerUnit float64 `json:"price_per_unit"`
}

// UpdateOfferInput carries optional admin edits to an offer.
type UpdateOfferInput struct {
	QuantitySlabs     []SlabInput
	MinFulfillmentQty *int
	LeadTimeDays      *int
	IsActive          *bool
}

// Progress reports how close an offer is to its fulfillment threshold, capped
// at 100.
func Progress(aggregated, minFulfillment int) float64 {
	if minFulfillment <= 0 {
		return 0
	}
	progress := float64(aggregated) / float64(minFulfillment) * 100
	if progress > 100 {
		return 100
	}
	return progress
}
