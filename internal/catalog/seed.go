package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
)

// SeedResult reports what the seed endpoint actually inserted.
type SeedResult struct {
	SuppliersCreated int               `json:"suppliers_created"`
	ProductsCreated  int               `json:"products_created"`
	Suppliers        []models.Supplier `json:"suppliers"`
	Products         []models.Product  `json:"products"`
}

var seedSuppliers = []models.Supplier{
	{Name: "Hindustan Unilever Limited", Code: "HUL", Description: "Leading FMCG company", IsActive: true},
	{Name: "ITC Limited", Code: "ITC", Description: "Diversified conglomerate", IsActive: true},
	{Name: "Fortune", Code: "FORTUNE", Description: "Adani Wilmar - Edible oils and foods", IsActive: true},
}

var seedProducts = []models.Product{
	{Name: "Surf Excel Quick Wash", Brand: "Surf Excel", Unit: "kg", Category: "Detergent", Barcode: "8901030705533", IsActive: true},
	{Name: "Vim Dishwash Bar", Brand: "Vim", Unit: "piece", Category: "Cleaning", Barcode: "8901030715253", IsActive: true},
	{Name: "Lifebuoy Total Soap", Brand: "Lifebuoy", Unit: "piece", Category: "Personal Care", Barcode: "8901030725351", IsActive: true},
	{Name: "Clinic Plus Shampoo", Brand: "Clinic Plus", Unit: "ml", Category: "Personal Care", Barcode: "8901030735450", IsActive: true},
	{Name: "Aashirvaad Atta", Brand: "Aashirvaad", Unit: "kg", Category: "Grocery", Barcode: "8901063155602", IsActive: true},
	{Name: "Sunfeast Dark Fantasy", Brand: "Sunfeast", Unit: "pack", Category: "Biscuits", Barcode: "8901063165608", IsActive: true},
	{Name: "Bingo Mad Angles", Brand: "Bingo", Unit: "pack", Category: "Snacks", Barcode: "8901063175607", IsActive: true},
	{Name: "Classmate Notebook", Brand: "Classmate", Unit: "piece", Category: "Stationery", Barcode: "8901063185606", IsActive: true},
	{Name: "Fortune Sunflower Oil", Brand: "Fortune", Unit: "litre", Category: "Edible Oil", Barcode: "8901058852349", IsActive: true},
	{Name: "Fortune Soya Chunks", Brand: "Fortune", Unit: "kg", Category: "Grocery", Barcode: "8901058862340", IsActive: true},
	{Name: "Fortune Basmati Rice", Brand: "Fortune", Unit: "kg", Category: "Grocery", Barcode: "8901058872341", IsActive: true},
	{Name: "Fortune Besan", Brand: "Fortune", Unit: "kg", Category: "Grocery", Barcode: "8901058882342", IsActive: true},
}

// Seed inserts the starter suppliers and products, skipping rows that already
// exist so the endpoint stays safe to call repeatedly.
func (s *service) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}

	for _, seed := range seedSuppliers {
		existing, err := s.repo.FindSupplierByCode(ctx, seed.Code)
		if err == nil {
			result.Suppliers = append(result.Suppliers, *existing)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check seed supplier")
		}
		supplier := seed
		if _, err := s.repo.CreateSupplier(ctx, &supplier); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed supplier")
		}
		result.SuppliersCreated++
		result.Suppliers = append(result.Suppliers, supplier)
	}

	for _, seed := range seedProducts {
		existing, err := s.repo.FindProductByNameAndBrand(ctx, seed.Name, seed.Brand)
		if err == nil {
			result.Products = append(result.Products, *existing)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check seed product")
		}
		product := seed
		if _, err := s.repo.CreateProduct(ctx, &product); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed product")
		}
		result.ProductsCreated++
		result.Products = append(result.Products, product)
	}

	return result, nil
}
