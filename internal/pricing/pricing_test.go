package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

func intPtr(v int) *int { return &v }

func twoTierSlabs() types.SlabList {
	return types.SlabList{
		{MinQty: 0, MaxQty: intPtr(99), PricePerUnit: decimal.NewFromFloat(10.0)},
		{MinQty: 100, MaxQty: nil, PricePerUnit: decimal.NewFromFloat(8.0)},
	}
}

func TestPriceForFirstTier(t *testing.T) {
	price := PriceFor(twoTierSlabs(), 50)
	if !price.Equal(decimal.NewFromFloat(10.0)) {
		t.Fatalf("expected 10.0 got %s", price)
	}
}

func TestPriceForUnboundedTier(t *testing.T) {
	price := PriceFor(twoTierSlabs(), 150)
	if !price.Equal(decimal.NewFromFloat(8.0)) {
		t.Fatalf("expected 8.0 got %s", price)
	}
}

func TestPriceForTierBoundaries(t *testing.T) {
	slabs := twoTierSlabs()
	if price := PriceFor(slabs, 99); !price.Equal(decimal.NewFromFloat(10.0)) {
		t.Fatalf("expected 10.0 at upper bound got %s", price)
	}
	if price := PriceFor(slabs, 100); !price.Equal(decimal.NewFromFloat(8.0)) {
		t.Fatalf("expected 8.0 at lower bound got %s", price)
	}
}

func TestPriceForZeroQuantity(t *testing.T) {
	price := PriceFor(twoTierSlabs(), 0)
	if !price.Equal(decimal.NewFromFloat(10.0)) {
		t.Fatalf("expected 10.0 got %s", price)
	}
}

func TestPriceForBelowEverySlabFallsBackToFirst(t *testing.T) {
	slabs := types.SlabList{
		{MinQty: 10, MaxQty: intPtr(49), PricePerUnit: decimal.NewFromFloat(12.0)},
		{MinQty: 50, MaxQty: nil, PricePerUnit: decimal.NewFromFloat(9.5)},
	}
	price := PriceFor(slabs, 3)
	if !price.Equal(decimal.NewFromFloat(12.0)) {
		t.Fatalf("expected fallback to first slab got %s", price)
	}
}

func TestPriceForEmptySlabs(t *testing.T) {
	price := PriceFor(nil, 10)
	if !price.Equal(decimal.Zero) {
		t.Fatalf("expected zero got %s", price)
	}
}

func TestPriceForFirstMatchWinsOnOverlap(t *testing.T) {
	slabs := types.SlabList{
		{MinQty: 0, MaxQty: intPtr(100), PricePerUnit: decimal.NewFromFloat(10.0)},
		{MinQty: 50, MaxQty: nil, PricePerUnit: decimal.NewFromFloat(7.0)},
	}
	price := PriceFor(slabs, 60)
	if !price.Equal(decimal.NewFromFloat(10.0)) {
		t.Fatalf("expected first matching slab got %s", price)
	}
}

func TestNextSlab(t *testing.T) {
	slabs := twoTierSlabs()
	next := NextSlab(slabs, 40)
	if next == nil {
		t.Fatal("expected a next slab")
	}
	if next.MinQty != 100 {
		t.Fatalf("expected min 100 got %d", next.MinQty)
	}
	if NextSlab(slabs, 150) != nil {
		t.Fatal("expected no next slab in deepest tier")
	}
}
