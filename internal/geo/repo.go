package geo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a zone repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, zone *models.Zone) (*models.Zone, error) {
	if err := r.db.WithContext(ctx).Create(zone).Error; err != nil {
		return nil, err
	}
	return zone, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	var zone models.Zone
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&zone).Error
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Zone, error) {
	var zones []models.Zone
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&zones).Error
	return zones, err
}

func (r *repository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var zones []models.Zone
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&zones).Error
	return zones, err
}

func (r *repository) IncrementRetailerCounts(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Zone{}).
		Where("id IN ?", ids).
		Update("retailer_count", gorm.Expr("retailer_count + 1")).Error
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Zone{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
