package retailers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/pagination"
)

// Repository defines persistence operations for retailers and their zone links.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, retailer *models.Retailer) (*models.Retailer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Retailer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params) ([]models.Retailer, *pagination.Cursor, error)
	LinkZones(ctx context.Context, retailerID uuid.UUID, zoneIDs []uuid.UUID) error
	ZoneIDs(ctx context.Context, retailerID uuid.UUID) ([]uuid.UUID, error)
	RetailerIDsInZone(ctx context.Context, zoneID uuid.UUID) ([]uuid.UUID, error)
}
