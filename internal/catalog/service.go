package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
)

// Service defines catalog reads plus the admin-only write operations.
type Service interface {
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	CreateSupplier(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
	Seed(ctx context.Context) (*SeedResult, error)
}

type service struct {
	repo Repository
}

// CreateSupplierInput carries the admin supplier-create payload. Codes are
// normalized to upper case before the uniqueness check.
type CreateSupplierInput struct {
	Name        string
	Code        string
	Description string
}

// CreateProductInput carries the admin product-create payload.
type CreateProductInput struct {
	Name        string
	Brand       string
	Barcode     string
	Unit        string
	Category    string
	Description string
	ImageURL    string
}

// UpdateProductInput carries optional product edits.
type UpdateProductInput struct {
	Name        *string
	Brand       *string
	Barcode     *string
	Unit        *string
	Category    *string
	Description *string
	ImageURL    *string
}

// NewService builds a catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	suppliers, err := s.repo.ListActiveSuppliers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	return suppliers, nil
}

func (s *service) GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.repo.FindSupplierByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

func (s *service) CreateSupplier(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error) {
	if input.Name == "" || input.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name and code required")
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	if _, err := s.repo.FindSupplierByCode(ctx, code); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier code already exists")
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check supplier code")
	}

	supplier := &models.Supplier{
		Name:        input.Name,
		Code:        code,
		Description: input.Description,
		IsActive:    true,
	}
	if _, err := s.repo.CreateSupplier(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	return supplier, nil
}

func (s *service) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	products, err := s.repo.ListActiveProducts(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" || input.Brand == "" || input.Unit == "" || input.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name, brand, unit and category required")
	}
	product := &models.Product{
		Name:        input.Name,
		Brand:       input.Brand,
		Barcode:     input.Barcode,
		Unit:        input.Unit,
		Category:    input.Category,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if _, err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Brand != nil {
		updates["brand"] = *input.Brand
	}
	if input.Barcode != nil {
		updates["barcode"] = *input.Barcode
	}
	if input.Unit != nil {
		updates["unit"] = *input.Unit
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.SoftDeleteProduct(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) Brands(ctx context.Context) ([]string, error) {
	brands, err := s.repo.DistinctBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	return brands, nil
}
