package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListByRetailer(ctx context.Context, retailerID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("retailer_id = ?", retailerID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) ListByOffer(ctx context.Context, offerID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// RepriceOffer rewrites the unit price and total of every order item on the
// offer in one statement, so no reader can observe a torn re-pricing.
func (r *repository) RepriceOffer(ctx context.Context, offerID uuid.UUID, price decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("offer_id = ?", offerID).
		Updates(map[string]any{
			"price_per_unit": price,
			"total_amount":   gorm.Expr("quantity * ?", price),
		}).Error
}

func (r *repository) SumQuantityByOffer(ctx context.Context, offerID uuid.UUID) (int, error) {
	var total *int
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("offer_id = ?", offerID).
		Select("SUM(quantity)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
