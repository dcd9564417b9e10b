package geo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
)

// Repository defines persistence operations for zones.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, zone *models.Zone) (*models.Zone, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Zone, error)
	ListActive(ctx context.Context) ([]models.Zone, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error)
	IncrementRetailerCounts(ctx context.Context, ids []uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}
