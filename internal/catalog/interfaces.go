package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
)

// ProductFilters describe the supported filter knobs for the product browse
// endpoint.
type ProductFilters struct {
	Category string
	Brand    string
}

// Repository defines persistence operations for the supplier/product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error)
	FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	FindSupplierByCode(ctx context.Context, code string) (*models.Supplier, error)
	ListActiveSuppliers(ctx context.Context) ([]models.Supplier, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductByNameAndBrand(ctx context.Context, name, brand string) (*models.Product, error)
	ListActiveProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctBrands(ctx context.Context) ([]string, error)
}
