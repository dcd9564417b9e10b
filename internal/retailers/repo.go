package retailers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a retailer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, retailer *models.Retailer) (*models.Retailer, error) {
	if err := r.db.WithContext(ctx).Create(retailer).Error; err != nil {
		return nil, err
	}
	return retailer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error) {
	var retailer models.Retailer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&retailer).Error
	if err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Retailer, error) {
	var retailer models.Retailer
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&retailer).Error
	if err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Retailer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Retailer, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Retailer{})
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Retailer
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

func (r *repository) LinkZones(ctx context.Context, retailerID uuid.UUID, zoneIDs []uuid.UUID) error {
	if len(zoneIDs) == 0 {
		return nil
	}
	links := make([]models.RetailerZone, 0, len(zoneIDs))
	for _, zoneID := range zoneIDs {
		links = append(links, models.RetailerZone{RetailerID: retailerID, ZoneID: zoneID})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *repository) ZoneIDs(ctx context.Context, retailerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.RetailerZone{}).
		Where("retailer_id = ?", retailerID).
		Order("created_at ASC").
		Pluck("zone_id", &ids).Error
	return ids, err
}

func (r *repository) RetailerIDsInZone(ctx context.Context, zoneID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.RetailerZone{}).
		Where("zone_id = ?", zoneID).
		Pluck("retailer_id", &ids).Error
	return ids, err
}
