package enums

import "fmt"

// OrderItemStatus mirrors the parent offer's fulfillment state on each order.
// Orders start as pending and are carried along by offer transitions.
type OrderItemStatus string

const (
	OrderItemStatusPending        OrderItemStatus = "pending"
	OrderItemStatusReadyToPack    OrderItemStatus = "ready_to_pack"
	OrderItemStatusPickedUp       OrderItemStatus = "picked_up"
	OrderItemStatusOutForDelivery OrderItemStatus = "out_for_delivery"
	OrderItemStatusDelivered      OrderItemStatus = "delivered"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusPending,
	OrderItemStatusReadyToPack,
	OrderItemStatusPickedUp,
	OrderItemStatusOutForDelivery,
	OrderItemStatusDelivered,
}

// IsValid reports whether the value matches the canonical order item status enum.
func (s OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// OrderItemStatusForOffer maps an offer status onto the order item status that
// a cascade applies to every order on that offer.
func OrderItemStatusForOffer(status OfferStatus) OrderItemStatus {
	switch status {
	case OfferStatusReadyToPack:
		return OrderItemStatusReadyToPack
	case OfferStatusPickedUp:
		return OrderItemStatusPickedUp
	case OfferStatusOutForDelivery:
		return OrderItemStatusOutForDelivery
	case OfferStatusDelivered:
		return OrderItemStatusDelivered
	default:
		return OrderItemStatusPending
	}
}

// ParseOrderItemStatus converts the raw string to OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
