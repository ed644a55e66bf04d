package admin

import (
	"net/http"
	"time"

	"enrollment-app/database"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/payments"

	"github.com/gin-gonic/gin"
)

type CreateCouponRequest struct {
	Code          string `json:"code" binding:"required"`
	DiscountType  string `json:"discount_type" binding:"required"`
	DiscountValue int64  `json:"discount_value" binding:"required"`
	MinAmount     *int64 `json:"min_amount"`
	MaxDiscount   *int64 `json:"max_discount"`
	ValidFrom     string `json:"valid_from" binding:"required"`
	ValidUntil    string `json:"valid_until" binding:"required"`
	UsageLimit    *int64 `json:"usage_limit"`
}

func CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid coupon fields"})
		return
	}

	discountType := coupons.DiscountType(req.DiscountType)
	switch discountType {
	case coupons.DiscountPercentage:
		if req.DiscountValue <= 0 || req.DiscountValue > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Percentage discount must be in (0,100]"})
			return
		}
	case coupons.DiscountFixed:
		if req.DiscountValue <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fixed discount must be positive"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown discount type"})
		return
	}

	validFrom, err := time.Parse(time.RFC3339, req.ValidFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid_from must be RFC3339"})
		return
	}
	validUntil, err := time.Parse(time.RFC3339, req.ValidUntil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid_until must be RFC3339"})
		return
	}
	if !validUntil.After(validFrom) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid_until must be after valid_from"})
		return
	}

	coupon := coupons.Coupon{
		Code:          req.Code,
		DiscountType:  discountType,
		DiscountValue: req.DiscountValue,
		MinAmount:     req.MinAmount,
		MaxDiscount:   req.MaxDiscount,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		UsageLimit:    req.UsageLimit,
	}
	if err := database.DB.Create(&coupon).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Coupon code already exists"})
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

func ListCoupons(c *gin.Context) {
	var list []coupons.Coupon
	if err := database.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coupons"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func ListAllPayments(c *gin.Context) {
	var intents []payments.PaymentIntent
	err := database.DB.Preload("Lines").Order("created_at DESC").Find(&intents).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, intents)
}
