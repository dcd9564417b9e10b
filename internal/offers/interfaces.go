package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

// ListFilters describe the admin offer listing filter knobs.
type ListFilters struct {
	ZoneID     *uuid.UUID
	SupplierID *uuid.UUID
}

// Repository defines persistence operations for supplier offers. Cascading a
// status change onto the offer's order items lives here too so the whole
// transition commits in one transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.SupplierOffer) (*models.SupplierOffer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error)
	OpenOfferExists(ctx context.Context, productID, supplierID, zoneID uuid.UUID) (bool, error)
	ListAcceptingByZone(ctx context.Context, zoneID uuid.UUID) ([]models.SupplierOffer, error)
	List(ctx context.Context, filters ListFilters) ([]models.SupplierOffer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OfferStatus) error
	CascadeStatusToOrders(ctx context.Context, offerID uuid.UUID, status enums.OrderItemStatus) error
	DistinctOrderRetailers(ctx context.Context, offerID uuid.UUID) ([]uuid.UUID, error)
}
