package coupons

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Redeem consumes one usage slot of a coupon inside the caller's transaction.
// The limit check and the increment are a single conditional UPDATE, so two
// concurrent settlements cannot both take the last slot.
func Redeem(tx *gorm.DB, code string) error {
	res := tx.Model(&Coupon{}).
		Where("LOWER(code) = ? AND (usage_limit IS NULL OR usage_count < usage_limit)",
			strings.ToLower(strings.TrimSpace(code))).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUsageExceeded
	}
	return nil
}
