package coupons

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a managed discount code. DiscountValue is percent points for
// percentage coupons and minor currency units for fixed ones. UsageCount is
// only ever advanced when a payment intent settles, never at validation time.
type Coupon struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Code          string       `gorm:"not null;uniqueIndex:idx_coupons_code" json:"code"`
	DiscountType  DiscountType `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue int64        `gorm:"not null" json:"discount_value"`
	MinAmount     *int64       `json:"min_amount,omitempty"`
	MaxDiscount   *int64       `json:"max_discount,omitempty"`
	ValidFrom     time.Time    `gorm:"not null" json:"valid_from"`
	ValidUntil    time.Time    `gorm:"not null" json:"valid_until"`
	UsageLimit    *int64       `json:"usage_limit,omitempty"`
	UsageCount    int64        `gorm:"not null;default:0" json:"usage_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
