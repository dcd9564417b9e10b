package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filters.RetailerID != nil {
		query = query.Where("retailer_id = ?", *filters.RetailerID)
	}
	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	var payments []models.Payment
	err := query.Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *repository) ListExpiredLocked(ctx context.Context, now time.Time) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND lock_expires_at < ?", enums.PaymentStatusLocked, now).
		Find(&payments).Error
	return payments, err
}

// ReleaseIfLocked flips one payment to released, conditioned on it still being
// locked. Concurrent sweeps race here; the condition guarantees exactly one
// caller wins and the rest see false with no error.
func (r *repository) ReleaseIfLocked(ctx context.Context, id uuid.UUID, releasedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusLocked).
		Updates(map[string]any{
			"status":      enums.PaymentStatusReleased,
			"released_at": releasedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
}
