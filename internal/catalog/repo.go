package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (r *repository) FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) FindSupplierByCode(ctx context.Context, code string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&supplier).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) ListActiveSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&suppliers).Error
	return suppliers, err
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductByNameAndBrand(ctx context.Context, name, brand string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("name = ? AND brand = ?", name, brand).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListActiveProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Brand != "" {
		query = query.Where("brand = ?", filters.Brand)
	}
	var products []models.Product
	err := query.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) SoftDeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	return result.RowsAffected > 0, result.Error
}

func (r *repository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *repository) DistinctBrands(ctx context.Context) ([]string, error) {
	var brands []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct().
		Order("brand ASC").
		Pluck("brand", &brands).Error
	return brands, err
}
