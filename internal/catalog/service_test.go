package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
)

type stubCatalogRepo struct {
	suppliers map[uuid.UUID]*models.Supplier
	products  map[uuid.UUID]*models.Product
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		suppliers: make(map[uuid.UUID]*models.Supplier),
		products:  make(map[uuid.UUID]*models.Product),
	}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) CreateSupplier(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	s.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (s *stubCatalogRepo) FindSupplierByID(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return supplier, nil
}

func (s *stubCatalogRepo) FindSupplierByCode(ctx context.Context, code string) (*models.Supplier, error) {
	for _, supplier := range s.suppliers {
		if supplier.Code == code {
			return supplier, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) ListActiveSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var out []models.Supplier
	for _, supplier := range s.suppliers {
		if supplier.IsActive {
			out = append(out, *supplier)
		}
	}
	return out, nil
}

func (s *stubCatalogRepo) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubCatalogRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubCatalogRepo) FindProductByNameAndBrand(ctx context.Context, name, brand string) (*models.Product, error) {
	for _, product := range s.products {
		if product.Name == name && product.Brand == brand {
			return product, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) ListActiveProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	var out []models.Product
	for _, product := range s.products {
		if !product.IsActive {
			continue
		}
		if filters.Category != "" && product.Category != filters.Category {
			continue
		}
		if filters.Brand != "" && product.Brand != filters.Brand {
			continue
		}
		out = append(out, *product)
	}
	return out, nil
}

func (s *stubCatalogRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	product, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		product.Name = name
	}
	if category, ok := updates["category"].(string); ok {
		product.Category = category
	}
	return nil
}

func (s *stubCatalogRepo) SoftDeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	product, ok := s.products[id]
	if !ok || !product.IsActive {
		return false, nil
	}
	product.IsActive = false
	return true, nil
}

func (s *stubCatalogRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, product := range s.products {
		if product.IsActive && !seen[product.Category] {
			seen[product.Category] = true
			out = append(out, product.Category)
		}
	}
	return out, nil
}

func (s *stubCatalogRepo) DistinctBrands(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, product := range s.products {
		if product.IsActive && !seen[product.Brand] {
			seen[product.Brand] = true
			out = append(out, product.Brand)
		}
	}
	return out, nil
}

func TestCreateSupplierNormalizesCode(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	supplier, err := svc.CreateSupplier(context.Background(), CreateSupplierInput{Name: "Hindustan Unilever", Code: "hul"})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if supplier.Code != "HUL" {
		t.Fatalf("expected upper-cased code got %q", supplier.Code)
	}
}

func TestCreateSupplierDuplicateCode(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	if _, err := svc.CreateSupplier(context.Background(), CreateSupplierInput{Name: "ITC", Code: "ITC"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.CreateSupplier(context.Background(), CreateSupplierInput{Name: "ITC Again", Code: "itc"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestDeleteProductSoftDeletes(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Surf Excel Quick Wash",
		Brand:    "Surf Excel",
		Unit:     "kg",
		Category: "Detergent",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteProduct(context.Background(), product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	products, _ := svc.ListProducts(context.Background(), ProductFilters{})
	if len(products) != 0 {
		t.Fatal("soft-deleted product still listed")
	}

	err = svc.DeleteProduct(context.Background(), product.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete got %v", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)

	first, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if first.SuppliersCreated != 3 || first.ProductsCreated != 12 {
		t.Fatalf("unexpected first seed counts: %d suppliers, %d products", first.SuppliersCreated, first.ProductsCreated)
	}

	second, err := svc.Seed(context.Background())
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if second.SuppliersCreated != 0 || second.ProductsCreated != 0 {
		t.Fatalf("second seed should create nothing, got %d/%d", second.SuppliersCreated, second.ProductsCreated)
	}
	if len(second.Suppliers) != 3 || len(second.Products) != 12 {
		t.Fatalf("second seed should still report existing rows, got %d/%d", len(second.Suppliers), len(second.Products))
	}
}

func TestListProductsFilters(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)
	if _, err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	grocery, err := svc.ListProducts(context.Background(), ProductFilters{Category: "Grocery"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(grocery) != 4 {
		t.Fatalf("expected 4 grocery products got %d", len(grocery))
	}

	fortune, err := svc.ListProducts(context.Background(), ProductFilters{Brand: "Fortune"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(fortune) != 4 {
		t.Fatalf("expected 4 Fortune products got %d", len(fortune))
	}
}
