package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSupplierOffer OutboxAggregateType = "supplier_offer"
	AggregateOrderItem     OutboxAggregateType = "order_item"
	AggregatePayment       OutboxAggregateType = "payment"
	AggregateZone          OutboxAggregateType = "zone"
	AggregateRetailer      OutboxAggregateType = "retailer"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSupplierOffer,
	AggregateOrderItem,
	AggregatePayment,
	AggregateZone,
	AggregateRetailer,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderPlaced        OutboxEventType = "order_placed"
	EventPriceDropped       OutboxEventType = "price_dropped"
	EventOfferCreated       OutboxEventType = "offer_created"
	EventOfferStatusChanged OutboxEventType = "offer_status_changed"
	EventPaymentRecorded    OutboxEventType = "payment_recorded"
	EventPaymentReleased    OutboxEventType = "payment_released"
	EventPaymentDisputed    OutboxEventType = "payment_disputed"
	EventDisputeResolved    OutboxEventType = "dispute_resolved"
	EventRetailerRegistered OutboxEventType = "retailer_registered"
	EventZoneCreated        OutboxEventType = "zone_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventPriceDropped,
	EventOfferCreated,
	EventOfferStatusChanged,
	EventPaymentRecorded,
	EventPaymentReleased,
	EventPaymentDisputed,
	EventDisputeResolved,
	EventRetailerRegistered,
	EventZoneCreated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
