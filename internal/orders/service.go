package orders

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/internal/offers"
	"github.com/kunalverma/groupbuy-backend/internal/pricing"
	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/metrics"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RetailerReader resolves the authenticated phone to a retailer row.
type RetailerReader interface {
	FindByPhone(ctx context.Context, phone string) (*models.Retailer, error)
}

// ZoneReader resolves zone display names for order detail views.
type ZoneReader interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error)
}

// Service is the aggregation engine: it owns the invariant that an offer's
// aggregate equals the sum of its live order quantities and that every live
// order shares the price implied by that aggregate.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	ListMine(ctx context.Context, phone string) ([]OrderDetails, error)
	Get(ctx context.Context, phone string, orderID uuid.UUID) (*OrderDetails, error)
}

type service struct {
	repo      Repository
	offers    offers.Repository
	retailers RetailerReader
	zones     ZoneReader
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.OrderPlacementMetrics
	locks     offerLocks
}

// NewService builds the aggregation engine with the required dependencies.
// placement may be nil; the metrics then become a no-op.
func NewService(repo Repository, offersRepo offers.Repository, retailers RetailerReader, zones ZoneReader, tx txRunner, publisher outboxPublisher, placement *metrics.OrderPlacementMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if offersRepo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	if retailers == nil {
		return nil, fmt.Errorf("retailer reader required")
	}
	if zones == nil {
		return nil, fmt.Errorf("zone reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		offers:    offersRepo,
		retailers: retailers,
		zones:     zones,
		tx:        tx,
		outbox:    publisher,
		metrics:   placement,
	}, nil
}

// Place runs the whole group-buy placement as one serialized critical section
// per offer: validate the offer still accepts orders, price the post-order
// aggregate, persist the new item, re-price every existing order to the new
// tier and auto-transition the offer when the threshold is crossed. Everything
// commits in a single transaction.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	start := time.Now()
	result, err := s.place(ctx, input)
	s.metrics.ObserveDuration(time.Since(start))
	switch {
	case err == nil:
		s.metrics.IncPlaced()
	case callerFault(err):
		s.metrics.IncRejected()
	default:
		s.metrics.IncFailed()
	}
	return result, err
}

func callerFault(err error) bool {
	appErr := pkgerrors.As(err)
	return appErr != nil && pkgerrors.MetadataFor(appErr.Code()).HTTPStatus < http.StatusInternalServerError
}

func (s *service) place(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.OfferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	retailer, err := s.retailers.FindByPhone(ctx, input.Phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}

	mu := s.locks.acquire(input.OfferID)
	defer mu.Unlock()

	var result *PlaceOrderResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		offersRepo := s.offers.WithTx(tx)
		ordersRepo := s.repo.WithTx(tx)

		offer, err := offersRepo.FindByID(ctx, input.OfferID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		if !offer.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		if !offer.Status.AcceptsOrders() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer accepting orders")
		}

		newAggregate := offer.CurrentAggregatedQty + input.Quantity
		oldPrice := offer.CurrentPricePerUnit
		newPrice := pricing.PriceFor(offer.QuantitySlabs, newAggregate)

		item := &models.OrderItem{
			OfferID:      offer.ID,
			RetailerID:   retailer.ID,
			RetailerName: retailer.ShopName,
			ZoneID:       offer.ZoneID,
			ProductID:    offer.ProductID,
			ProductName:  offer.ProductName,
			ProductBrand: offer.ProductBrand,
			ProductUnit:  offer.ProductUnit,
			SupplierID:   offer.SupplierID,
			SupplierName: offer.SupplierName,
			SupplierCode: offer.SupplierCode,
			Quantity:     input.Quantity,
			PricePerUnit: newPrice,
			TotalAmount:  newPrice.Mul(decimal.NewFromInt(int64(input.Quantity))),
			Status:       enums.OrderItemStatusForOffer(offer.Status),
		}
		if _, err := ordersRepo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order item")
		}

		offerUpdates := map[string]any{
			"current_aggregated_qty": newAggregate,
			"current_price_per_unit": newPrice,
		}
		newStatus := offer.Status
		if newAggregate >= offer.MinFulfillmentQty && offer.Status == enums.OfferStatusOpen {
			newStatus = enums.OfferStatusReadyToPack
			offerUpdates["status"] = newStatus
		}
		if err := offersRepo.Update(ctx, offer.ID, offerUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer aggregate")
		}

		// One statement rewrites every order on the offer, the new one
		// included, so the shared-price invariant holds at commit.
		if err := ordersRepo.RepriceOffer(ctx, offer.ID, newPrice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reprice offer orders")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{RetailerID: &retailer.ID, Phone: retailer.Phone},
			Data: OrderPlacedEvent{
				OrderID:          item.ID,
				OfferID:          offer.ID,
				ZoneID:           offer.ZoneID,
				RetailerID:       retailer.ID,
				RetailerName:     retailer.ShopName,
				ProductName:      offer.ProductName,
				Quantity:         input.Quantity,
				PricePerUnit:     newPrice,
				NewAggregatedQty: newAggregate,
			},
		}); err != nil {
			return err
		}

		if newPrice.LessThan(oldPrice) {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPriceDropped,
				AggregateType: enums.AggregateSupplierOffer,
				AggregateID:   offer.ID,
				Version:       1,
				Data: PriceDroppedEvent{
					OfferID:             offer.ID,
					ZoneID:              offer.ZoneID,
					ProductName:         offer.ProductName,
					OldPricePerUnit:     oldPrice,
					NewPricePerUnit:     newPrice,
					TriggeredByRetailer: retailer.ID,
				},
			}); err != nil {
				return err
			}
		}

		result = &PlaceOrderResult{
			OrderID:          item.ID,
			Quantity:         input.Quantity,
			PricePerUnit:     newPrice,
			TotalAmount:      newPrice.Mul(decimal.NewFromInt(int64(input.Quantity))),
			NewAggregatedQty: newAggregate,
			OfferStatus:      newStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListMine(ctx context.Context, phone string) ([]OrderDetails, error) {
	retailer, err := s.retailers.FindByPhone(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	items, err := s.repo.ListByRetailer(ctx, retailer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	details := make([]OrderDetails, 0, len(items))
	for _, item := range items {
		detail, err := s.describe(ctx, item)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

func (s *service) Get(ctx context.Context, phone string, orderID uuid.UUID) (*OrderDetails, error) {
	retailer, err := s.retailers.FindByPhone(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	item, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if item.RetailerID != retailer.ID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.describe(ctx, *item)
}

func (s *service) describe(ctx context.Context, item models.OrderItem) (*OrderDetails, error) {
	detail := &OrderDetails{OrderItem: item}

	offer, err := s.offers.FindByID(ctx, item.OfferID)
	if err == nil {
		detail.OfferStatus = offer.Status
		detail.OfferAggregatedQty = offer.CurrentAggregatedQty
		detail.OfferMinFulfillmentQty = offer.MinFulfillmentQty
		detail.OfferProgressPercentage = offers.Progress(offer.CurrentAggregatedQty, offer.MinFulfillmentQty)
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}

	zones, err := s.zones.ListByIDs(ctx, []uuid.UUID{item.ZoneID})
	if err != nil {
		return nil, err
	}
	if len(zones) > 0 {
		detail.ZoneName = zones[0].Name
	}
	return detail, nil
}
