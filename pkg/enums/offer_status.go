package enums

import "fmt"

// OfferStatus describes where a supplier offer sits in its fulfillment lifecycle.
type OfferStatus string

const (
	OfferStatusOpen           OfferStatus = "open"
	OfferStatusReadyToPack    OfferStatus = "ready_to_pack"
	OfferStatusPickedUp       OfferStatus = "picked_up"
	OfferStatusOutForDelivery OfferStatus = "out_for_delivery"
	OfferStatusDelivered      OfferStatus = "delivered"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusOpen,
	OfferStatusReadyToPack,
	OfferStatusPickedUp,
	OfferStatusOutForDelivery,
	OfferStatusDelivered,
}

// IsValid reports whether the value matches the canonical offer status enum.
func (s OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// AcceptsOrders reports whether new orders may still join the offer.
func (s OfferStatus) AcceptsOrders() bool {
	return s == OfferStatusOpen || s == OfferStatusReadyToPack
}

// ParseOfferStatus converts the raw string to OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}
