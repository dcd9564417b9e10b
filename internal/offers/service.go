package offers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/internal/pricing"
	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CatalogReader resolves the product/supplier references an offer snapshots.
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
}

// ZoneReader resolves zone references for validation and display names.
type ZoneReader interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error)
}

// Service defines offer management and retailer-facing listings.
type Service interface {
	Create(ctx context.Context, input CreateOfferInput) (*models.SupplierOffer, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateOfferInput) (*models.SupplierOffer, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, rawStatus string) (*models.SupplierOffer, error)
	ListZoneOffers(ctx context.Context, zoneID uuid.UUID) ([]OfferDetails, error)
	GetDetails(ctx context.Context, id uuid.UUID) (*OfferDetails, error)
	List(ctx context.Context, filters ListFilters) ([]models.SupplierOffer, error)
}

type service struct {
	repo    Repository
	catalog CatalogReader
	zones   ZoneReader
	tx      txRunner
	outbox  outboxPublisher
}

// OfferCreatedEvent is emitted when an admin opens a new offer in a zone.
type OfferCreatedEvent struct {
	OfferID      uuid.UUID `json:"offer_id"`
	ZoneID       uuid.UUID `json:"zone_id"`
	ProductName  string    `json:"product_name"`
	SupplierName string    `json:"supplier_name"`
}

// OfferStatusChangedEvent is emitted on every offer status transition,
// automatic or administrative.
type OfferStatusChangedEvent struct {
	OfferID     uuid.UUID         `json:"offer_id"`
	ZoneID      uuid.UUID         `json:"zone_id"`
	ProductName string            `json:"product_name"`
	OldStatus   enums.OfferStatus `json:"old_status"`
	NewStatus   enums.OfferStatus `json:"new_status"`
}

// NewService builds an offers service with the required dependencies.
func NewService(repo Repository, catalog CatalogReader, zones ZoneReader, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
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
	return &service{repo: repo, catalog: catalog, zones: zones, tx: tx, outbox: publisher}, nil
}

func (s *service) Create(ctx context.Context, input CreateOfferInput) (*models.SupplierOffer, error) {
	slabs, err := buildSlabs(input.QuantitySlabs)
	if err != nil {
		return nil, err
	}
	if input.MinFulfillmentQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min fulfillment quantity must be positive")
	}

	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	supplier, err := s.catalog.GetSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	zone, err := s.zoneByID(ctx, input.ZoneID)
	if err != nil {
		return nil, err
	}

	var offer *models.SupplierOffer
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.OpenOfferExists(ctx, input.ProductID, input.SupplierID, input.ZoneID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open offer")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "open offer already exists for this product, supplier and zone")
		}

		offer = &models.SupplierOffer{
			ProductID:           input.ProductID,
			SupplierID:          input.SupplierID,
			ZoneID:              zone.ID,
			ProductName:         product.Name,
			ProductBrand:        product.Brand,
			ProductUnit:         product.Unit,
			SupplierName:        supplier.Name,
			SupplierCode:        supplier.Code,
			QuantitySlabs:       slabs,
			MinFulfillmentQty:   input.MinFulfillmentQty,
			LeadTimeDays:        input.LeadTimeDays,
			CurrentPricePerUnit: pricing.PriceFor(slabs, 0),
			Status:              enums.OfferStatusOpen,
			IsActive:            true,
		}
		if _, err := repo.Create(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferCreated,
			AggregateType: enums.AggregateSupplierOffer,
			AggregateID:   offer.ID,
			Version:       1,
			Data: OfferCreatedEvent{
				OfferID:      offer.ID,
				ZoneID:       offer.ZoneID,
				ProductName:  offer.ProductName,
				SupplierName: offer.SupplierName,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// Update edits offer terms in place. Changing the slab table does not
// retroactively re-price live orders; prices re-align on the next placement
// against the offer.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateOfferInput) (*models.SupplierOffer, error) {
	if _, err := s.findOffer(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.QuantitySlabs != nil {
		slabs, err := buildSlabs(input.QuantitySlabs)
		if err != nil {
			return nil, err
		}
		updates["quantity_slabs"] = slabs
	}
	if input.MinFulfillmentQty != nil {
		if *input.MinFulfillmentQty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min fulfillment quantity must be positive")
		}
		updates["min_fulfillment_qty"] = *input.MinFulfillmentQty
	}
	if input.LeadTimeDays != nil {
		updates["lead_time_days"] = *input.LeadTimeDays
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer")
		}
	}
	return s.findOffer(ctx, id)
}

// TransitionStatus applies an administrative fulfillment transition. Only
// forward movement through the lifecycle is allowed, the new status cascades
// onto every order item on the offer, and a status-changed event is emitted
// for notification fan-out.
func (s *service) TransitionStatus(ctx context.Context, id uuid.UUID, rawStatus string) (*models.SupplierOffer, error) {
	newStatus, err := enums.ParseOfferStatus(rawStatus)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer status")
	}

	var updated *models.SupplierOffer
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		offer, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		if statusRank(newStatus) <= statusRank(offer.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer status can only move forward")
		}

		if err := repo.UpdateStatus(ctx, offer.ID, newStatus); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer status")
		}
		if err := repo.CascadeStatusToOrders(ctx, offer.ID, enums.OrderItemStatusForOffer(newStatus)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cascade status to orders")
		}

		oldStatus := offer.Status
		offer.Status = newStatus
		updated = offer
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferStatusChanged,
			AggregateType: enums.AggregateSupplierOffer,
			AggregateID:   offer.ID,
			Version:       1,
			Data: OfferStatusChangedEvent{
				OfferID:     offer.ID,
				ZoneID:      offer.ZoneID,
				ProductName: offer.ProductName,
				OldStatus:   oldStatus,
				NewStatus:   newStatus,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) ListZoneOffers(ctx context.Context, zoneID uuid.UUID) ([]OfferDetails, error) {
	zone, err := s.zoneByID(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	offers, err := s.repo.ListAcceptingByZone(ctx, zoneID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list zone offers")
	}

	details := make([]OfferDetails, 0, len(offers))
	for _, offer := range offers {
		details = append(details, OfferDetails{
			SupplierOffer:      offer,
			ZoneName:           zone.Name,
			ProgressPercentage: Progress(offer.CurrentAggregatedQty, offer.MinFulfillmentQty),
		})
	}
	return details, nil
}

func (s *service) GetDetails(ctx context.Context, id uuid.UUID) (*OfferDetails, error) {
	offer, err := s.findOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	zone, err := s.zoneByID(ctx, offer.ZoneID)
	if err != nil {
		return nil, err
	}

	details := &OfferDetails{
		SupplierOffer:      *offer,
		ZoneName:           zone.Name,
		ProgressPercentage: Progress(offer.CurrentAggregatedQty, offer.MinFulfillmentQty),
	}
	if product, err := s.catalog.GetProduct(ctx, offer.ProductID); err == nil {
		details.ProductCategory = product.Category
		details.ProductImageURL = product.ImageURL
	}
	return details, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]models.SupplierOffer, error) {
	offers, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	return offers, nil
}

func (s *service) findOffer(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

func (s *service) zoneByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	zones, err := s.zones.ListByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 || !zones[0].IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "zone not found")
	}
	return &zones[0], nil
}

func buildSlabs(inputs []SlabInput) (types.SlabList, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one quantity slab required")
	}
	slabs := make(types.SlabList, 0, len(inputs))
	for _, in := range inputs {
		if in.MinQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slab min quantity cannot be negative")
		}
		if in.MaxQty != nil && *in.MaxQty < in.MinQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slab max quantity below min quantity")
		}
		if in.PricePerUnit <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slab price must be positive")
		}
		slabs = append(slabs, types.QuantitySlab{
			MinQty:       in.MinQty,
			MaxQty:       in.MaxQty,
			PricePerUnit: decimal.NewFromFloat(in.PricePerUnit),
		})
	}
	return slabs, nil
}

func statusRank(status enums.OfferStatus) int {
	switch status {
	case enums.OfferStatusOpen:
		return 0
	case enums.OfferStatusReadyToPack:
		return 1
	case enums.OfferStatusPickedUp:
		return 2
	case enums.OfferStatusOutForDelivery:
		return 3
	case enums.OfferStatusDelivered:
		return 4
	default:
		return -1
	}
}
