package checkout

import "enrollment-app/internal/domain/catalog"

type itemRef struct {
	Kind string `json:"kind" binding:"required"`
	ID   uint   `json:"id" binding:"required"`
}

// InitiateRequest is shared by all three checkout entry points: the cart page
// sends item_refs, the single-course modal and the enrollment form send
// single_item_ref.
type InitiateRequest struct {
	ItemRefs       []itemRef `json:"item_refs"`
	SingleItemRef  *itemRef  `json:"single_item_ref"`
	Method         string    `json:"method" binding:"required"`
	CouponCode     string    `json:"coupon_code"`
	IdempotencyKey string    `json:"idempotency_key" binding:"required"`
}

func (r *InitiateRequest) refs() []catalog.ItemRef {
	raw := r.ItemRefs
	if len(raw) == 0 && r.SingleItemRef != nil {
		raw = []itemRef{*r.SingleItemRef}
	}
	refs := make([]catalog.ItemRef, 0, len(raw))
	for _, it := range raw {
		refs = append(refs, catalog.ItemRef{Kind: catalog.ItemKind(it.Kind), ID: it.ID})
	}
	return refs
}

type CouponCheckRequest struct {
	Code   string `json:"code" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
}
