package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

// ListFilters narrow the payment listing. Retailer-facing calls always set
// RetailerID; the admin listing may filter by status or supplier.
type ListFilters struct {
	RetailerID *uuid.UUID
	SupplierID *uuid.UUID
	Status     *enums.PaymentStatus
}

// Repository defines persistence operations for payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, filters ListFilters) ([]models.Payment, error)
	ListExpiredLocked(ctx context.Context, now time.Time) ([]models.Payment, error)
	ReleaseIfLocked(ctx context.Context, id uuid.UUID, releasedAt time.Time) (bool, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
