package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("coupon not found")
	ErrExpired       = errors.New("coupon is expired or not yet valid")
	ErrBelowMinimum  = errors.New("order amount is below the coupon minimum")
	ErrUsageExceeded = errors.New("coupon usage limit reached")
)

// Quote is a validated discount decision for a given subtotal. It carries no
// side effects; the coupon's usage slot is only consumed at settlement.
type Quote struct {
	Coupon         Coupon
	Subtotal       int64
	DiscountAmount int64
	FinalAmount    int64
}

type Validator struct {
	db  *gorm.DB
	now func() time.Time
}

func NewValidator(db *gorm.DB) *Validator {
	return &Validator{db: db, now: time.Now}
}

// Validate checks a coupon code against a subtotal and returns the discount
// breakdown. Codes match case-insensitively. It never mutates UsageCount.
func (v *Validator) Validate(ctx context.Context, code string, subtotal int64) (*Quote, error) {
	var coupon Coupon
	err := v.db.WithContext(ctx).
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}

	return Evaluate(coupon, subtotal, v.now())
}

// Evaluate applies the coupon's own rules to a subtotal. Split from the
// lookup so the rule set is checkable in isolation.
func Evaluate(coupon Coupon, subtotal int64, now time.Time) (*Quote, error) {
	if now.Before(coupon.ValidFrom) || now.After(coupon.ValidUntil) {
		return nil, ErrExpired
	}
	if coupon.MinAmount != nil && subtotal < *coupon.MinAmount {
		return nil, ErrBelowMinimum
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return nil, ErrUsageExceeded
	}

	discount := Discount(&coupon, subtotal)
	return &Quote{
		Coupon:         coupon,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		FinalAmount:    subtotal - discount,
	}, nil
}

// Discount computes the discount a coupon grants on a subtotal. Percentage
// discounts are capped by MaxDiscount; fixed discounts are clamped to the
// subtotal so the payable amount never goes negative.
func Discount(c *Coupon, subtotal int64) int64 {
	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal * c.DiscountValue / 100
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
