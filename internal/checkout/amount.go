package checkout

import (
	"context"

	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
)

// Totals is the amount breakdown for one checkout. All values are minor
// currency units.
type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	FinalAmount    int64 `json:"final_amount"`
}

// ComputeAmount sums the priced items and applies an optional coupon to the
// whole cart. Deterministic and side-effect-free: the coupon's usage slot is
// untouched here. A failed coupon validation leaves nothing half-applied; the
// error propagates and the caller keeps the undiscounted cart.
func ComputeAmount(ctx context.Context, items []catalog.PricedItem, couponCode string, validator CouponValidator) (Totals, *coupons.Quote, error) {
	if len(items) == 0 {
		return Totals{}, nil, ErrEmptyCart
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice
	}

	if couponCode == "" {
		return Totals{Subtotal: subtotal, DiscountAmount: 0, FinalAmount: subtotal}, nil, nil
	}

	quote, err := validator.Validate(ctx, couponCode, subtotal)
	if err != nil {
		return Totals{}, nil, err
	}
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: quote.DiscountAmount,
		FinalAmount:    quote.FinalAmount,
	}, quote, nil
}
