package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox/idempotency"
)

const domainNotificationConsumer = "domain-notifications"

type consumerRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

type zoneMemberReader interface {
	RetailerIDsInZone(ctx context.Context, zoneID uuid.UUID) ([]uuid.UUID, error)
}

type offerOrderReader interface {
	DistinctOrderRetailers(ctx context.Context, offerID uuid.UUID) ([]uuid.UUID, error)
}

// Consumer watches domain events and fans them out into in-app notification
// rows. Delivery is best effort: a failed fan-out nacks the message for retry
// but never touches the state transition that produced the event.
type Consumer struct {
	repo         consumerRepo
	zones        zoneMemberReader
	offerOrders  offerOrderReader
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the domain notification consumer.
func NewConsumer(repo consumerRepo, zones zoneMemberReader, offerOrders offerOrderReader, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if zones == nil {
		return nil, fmt.Errorf("zone member reader required")
	}
	if offerOrders == nil {
		return nil, fmt.Errorf("offer order reader required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		zones:        zones,
		offerOrders:  offerOrders,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	handler, handled := c.handlerFor(enums.OutboxEventType(eventType))
	if !handled {
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		return processResult{ack: true}
	}

	if err := handler(ctx, envelope.Data); err != nil {
		c.logg.Error(logCtx, "notification fan-out failed", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func (c *Consumer) handlerFor(eventType enums.OutboxEventType) (func(context.Context, json.RawMessage) error, bool) {
	switch eventType {
	case enums.EventOrderPlaced:
		return c.handleOrderPlaced, true
	case enums.EventPriceDropped:
		return c.handlePriceDropped, true
	case enums.EventOfferCreated:
		return c.handleOfferCreated, true
	case enums.EventOfferStatusChanged:
		return c.handleOfferStatusChanged, true
	case enums.EventPaymentRecorded:
		return c.handlePaymentRecorded, true
	case enums.EventPaymentDisputed:
		return c.handlePaymentDisputed, true
	case enums.EventDisputeResolved:
		return c.handleDisputeResolved, true
	default:
		return nil, false
	}
}

type orderPlacedPayload struct {
	OfferID          uuid.UUID       `json:"offer_id"`
	ZoneID           uuid.UUID       `json:"zone_id"`
	RetailerID       uuid.UUID       `json:"retailer_id"`
	RetailerName     string          `json:"retailer_name"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	NewAggregatedQty int             `json:"new_aggregated_qty"`
	PricePerUnit     decimal.Decimal `json:"price_per_unit"`
}

func (c *Consumer) handleOrderPlaced(ctx context.Context, data json.RawMessage) error {
	var payload orderPlacedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse order_placed payload: %w", err)
	}
	title := "Group order is growing"
	body := fmt.Sprintf("%s ordered %d x %s. Pooled quantity is now %d.",
		payload.RetailerName, payload.Quantity, payload.ProductName, payload.NewAggregatedQty)
	rows, err := c.zoneRows(ctx, payload.ZoneID, &payload.RetailerID, enums.NotificationTypeOrder, title, body)
	if err != nil {
		return err
	}
	rows = append(rows, models.Notification{
		Audience: enums.NotificationAudienceAdmin,
		Type:     enums.NotificationTypeOrder,
		Title:    "Order placed",
		Body: fmt.Sprintf("%s ordered %d x %s at %s per unit.",
			payload.RetailerName, payload.Quantity, payload.ProductName, payload.PricePerUnit),
	})
	return c.repo.CreateBatch(ctx, rows)
}

type priceDroppedPayload struct {
	OfferID             uuid.UUID       `json:"offer_id"`
	ZoneID              uuid.UUID       `json:"zone_id"`
	ProductName         string          `json:"product_name"`
	OldPricePerUnit     decimal.Decimal `json:"old_price_per_unit"`
	NewPricePerUnit     decimal.Decimal `json:"new_price_per_unit"`
	TriggeredByRetailer uuid.UUID       `json:"triggered_by_retailer"`
}

func (c *Consumer) handlePriceDropped(ctx context.Context, data json.RawMessage) error {
	var payload priceDroppedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse price_dropped payload: %w", err)
	}
	title := "Price dropped"
	body := fmt.Sprintf("%s is now %s per unit, down from %s. Every order on the offer gets the new price.",
		payload.ProductName, payload.NewPricePerUnit, payload.OldPricePerUnit)
	rows, err := c.zoneRows(ctx, payload.ZoneID, &payload.TriggeredByRetailer, enums.NotificationTypePricing, title, body)
	if err != nil {
		return err
	}
	return c.repo.CreateBatch(ctx, rows)
}

type offerCreatedPayload struct {
	OfferID      uuid.UUID `json:"offer_id"`
	ZoneID       uuid.UUID `json:"zone_id"`
	ProductName  string    `json:"product_name"`
	SupplierName string    `json:"supplier_name"`
}

func (c *Consumer) handleOfferCreated(ctx context.Context, data json.RawMessage) error {
	var payload offerCreatedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse offer_created payload: %w", err)
	}
	title := "New group offer"
	body := fmt.Sprintf("%s from %s is open for group orders in your zone.",
		payload.ProductName, payload.SupplierName)
	rows, err := c.zoneRows(ctx, payload.ZoneID, nil, enums.NotificationTypeOffer, title, body)
	if err != nil {
		return err
	}
	return c.repo.CreateBatch(ctx, rows)
}

type offerStatusChangedPayload struct {
	OfferID     uuid.UUID `json:"offer_id"`
	ZoneID      uuid.UUID `json:"zone_id"`
	ProductName string    `json:"product_name"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
}

func (c *Consumer) handleOfferStatusChanged(ctx context.Context, data json.RawMessage) error {
	var payload offerStatusChangedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse offer_status_changed payload: %w", err)
	}
	retailerIDs, err := c.offerOrders.DistinctOrderRetailers(ctx, payload.OfferID)
	if err != nil {
		return fmt.Errorf("load offer retailers: %w", err)
	}
	rows := make([]models.Notification, 0, len(retailerIDs))
	for _, retailerID := range retailerIDs {
		id := retailerID
		rows = append(rows, models.Notification{
			RetailerID: &id,
			Audience:   enums.NotificationAudienceRetailer,
			Type:       enums.NotificationTypeOffer,
			Title:      "Order update",
			Body:       fmt.Sprintf("Your %s order is now %s.", payload.ProductName, payload.NewStatus),
		})
	}
	return c.repo.CreateBatch(ctx, rows)
}

type paymentRecordedPayload struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	RetailerID    uuid.UUID       `json:"retailer_id"`
	SupplierName  string          `json:"supplier_name"`
	Amount        decimal.Decimal `json:"amount"`
	LockExpiresAt string          `json:"lock_expires_at"`
}

func (c *Consumer) handlePaymentRecorded(ctx context.Context, data json.RawMessage) error {
	var payload paymentRecordedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payment_recorded payload: %w", err)
	}
	id := payload.RetailerID
	return c.repo.Create(ctx, &models.Notification{
		RetailerID: &id,
		Audience:   enums.NotificationAudienceRetailer,
		Type:       enums.NotificationTypePayment,
		Title:      "Payment recorded",
		Body: fmt.Sprintf("Your payment of %s to %s is locked for the dispute window.",
			payload.Amount, payload.SupplierName),
	})
}

type paymentDisputedPayload struct {
	PaymentID    uuid.UUID       `json:"payment_id"`
	RetailerID   uuid.UUID       `json:"retailer_id"`
	RetailerName string          `json:"retailer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
}

func (c *Consumer) handlePaymentDisputed(ctx context.Context, data json.RawMessage) error {
	var payload paymentDisputedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse payment_disputed payload: %w", err)
	}
	id := payload.RetailerID
	rows := []models.Notification{
		{
			RetailerID: &id,
			Audience:   enums.NotificationAudienceRetailer,
			Type:       enums.NotificationTypePayment,
			Title:      "Dispute raised",
			Body:       fmt.Sprintf("Your dispute for %s is under review.", payload.Amount),
		},
		{
			Audience: enums.NotificationAudienceAdmin,
			Type:     enums.NotificationTypePayment,
			Title:    "Payment disputed",
			Body: fmt.Sprintf("%s disputed a payment of %s: %s",
				payload.RetailerName, payload.Amount, payload.Reason),
		},
	}
	return c.repo.CreateBatch(ctx, rows)
}

type disputeResolvedPayload struct {
	PaymentID  uuid.UUID `json:"payment_id"`
	RetailerID uuid.UUID `json:"retailer_id"`
	Resolution string    `json:"resolution"`
	Note       string    `json:"note"`
}

func (c *Consumer) handleDisputeResolved(ctx context.Context, data json.RawMessage) error {
	var payload disputeResolvedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse dispute_resolved payload: %w", err)
	}
	id := payload.RetailerID
	body := fmt.Sprintf("Your dispute was resolved: %s.", payload.Resolution)
	if payload.Note != "" {
		body = fmt.Sprintf("Your dispute was resolved: %s. %s", payload.Resolution, payload.Note)
	}
	return c.repo.Create(ctx, &models.Notification{
		RetailerID: &id,
		Audience:   enums.NotificationAudienceRetailer,
		Type:       enums.NotificationTypePayment,
		Title:      "Dispute resolved",
		Body:       body,
	})
}

// zoneRows builds one retailer row per zone member, skipping the excluded
// retailer when set.
func (c *Consumer) zoneRows(ctx context.Context, zoneID uuid.UUID, exclude *uuid.UUID, notifType enums.NotificationType, title, body string) ([]models.Notification, error) {
	retailerIDs, err := c.zones.RetailerIDsInZone(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("load zone retailers: %w", err)
	}
	rows := make([]models.Notification, 0, len(retailerIDs))
	for _, retailerID := range retailerIDs {
		if exclude != nil && retailerID == *exclude {
			continue
		}
		id := retailerID
		rows = append(rows, models.Notification{
			RetailerID: &id,
			Audience:   enums.NotificationAudienceRetailer,
			Type:       notifType,
			Title:      title,
			Body:       body,
		})
	}
	return rows, nil
}
