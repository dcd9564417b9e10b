package types

import "github.com/shopspring/decimal"

// QuantitySlab is one quantity-tier pricing rule on a supplier offer. A nil
// MaxQty means the tier is unbounded above.
type QuantitySlab struct {
	MinQty       int             `json:"min_qty" validate:"min=0"`
	MaxQty       *int            `json:"max_qty,omitempty" validate:"omitempty,min=0"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// Contains reports whether qty falls inside the slab's [min, max] window.
func (s QuantitySlab) Contains(qty int) bool {
	if qty < s.MinQty {
		return false
	}
	return s.MaxQty == nil || qty <= *s.MaxQty
}

// SlabList is the ordered tier table stored on an offer. Order matters:
// pricing is first-match-wins over the stored order, and the list is not
// required to be sorted or contiguous.
type SlabList []QuantitySlab
