package offers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an offers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, offer *models.SupplierOffer) (*models.SupplierOffer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error) {
	var offer models.SupplierOffer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) OpenOfferExists(ctx context.Context, productID, supplierID, zoneID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SupplierOffer{}).
		Where("product_id = ? AND supplier_id = ? AND zone_id = ? AND status = ? AND is_active = ?",
			productID, supplierID, zoneID, enums.OfferStatusOpen, true).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListAcceptingByZone(ctx context.Context, zoneID uuid.UUID) ([]models.SupplierOffer, error) {
	var offers []models.SupplierOffer
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND is_active = ? AND status IN ?",
			zoneID, true, []enums.OfferStatus{enums.OfferStatusOpen, enums.OfferStatusReadyToPack}).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.SupplierOffer, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierOffer{})
	if filters.ZoneID != nil {
		query = query.Where("zone_id = ?", *filters.ZoneID)
	}
	if filters.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filters.SupplierID)
	}
	var offers []models.SupplierOffer
	err := query.Order("created_at DESC").Find(&offers).Error
	return offers, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.SupplierOffer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OfferStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierOffer{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) CascadeStatusToOrders(ctx context.Context, offerID uuid.UUID, status enums.OrderItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("offer_id = ?", offerID).
		Update("status", status).Error
}

func (r *repository) DistinctOrderRetailers(ctx context.Context, offerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("offer_id = ?", offerID).
		Distinct().
		Pluck("retailer_id", &ids).Error
	return ids, err
}
