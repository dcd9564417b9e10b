package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

// PriceFor resolves the per-unit price for an aggregate quantity against the
// offer's slab ladder. Slabs are evaluated in listed order and the first slab
// containing the quantity wins. A quantity below every slab falls back to the
// first slab's price so a brand new offer always has a quotable price.
func PriceFor(slabs types.SlabList, qty int) decimal.Decimal {
	if len(slabs) == 0 {
		return decimal.Zero
	}
	for _, slab := range slabs {
		if slab.Contains(qty) {
			return slab.PricePerUnit
		}
	}
	return slabs[0].PricePerUnit
}

// NextSlab returns the first slab whose minimum lies strictly above qty, or
// nil when qty already sits in the deepest slab. Listings use it to show how
// far the group is from the next discount.
func NextSlab(slabs types.SlabList, qty int) *types.QuantitySlab {
	var best *types.QuantitySlab
	for i := range slabs {
		slab := slabs[i]
		if slab.MinQty <= qty {
			continue
		}
		if best == nil || slab.MinQty < best.MinQty {
			best = &slabs[i]
		}
	}
	return best
}
