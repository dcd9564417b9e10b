package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
)

// Repository defines persistence operations for order items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
	ListByRetailer(ctx context.Context, retailerID uuid.UUID) ([]models.OrderItem, error)
	ListByOffer(ctx context.Context, offerID uuid.UUID) ([]models.OrderItem, error)
	RepriceOffer(ctx context.Context, offerID uuid.UUID, price decimal.Decimal) error
	SumQuantityByOffer(ctx context.Context, offerID uuid.UUID) (int, error)
}
