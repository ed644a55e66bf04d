package checkout

import (
	"errors"
	"log"
	"net/http"

	svc "enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service    *svc.Service
	store      *payments.Store
	enrollment *enrollments.Activator
}

func NewHandler(service *svc.Service, store *payments.Store, enrollment *enrollments.Activator) *Handler {
	return &Handler{service: service, store: store, enrollment: enrollment}
}

func (h *Handler) Initiate(c *gin.Context) {
	var req InitiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "bad_request", "error": "Missing or invalid checkout fields"})
		return
	}

	studentID := c.GetUint("user_id")
	if studentID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	method, ok := payments.ParseMethod(req.Method)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "unsupported_method", "error": "Unknown payment method"})
		return
	}

	result, err := h.service.Initiate(c.Request.Context(), studentID, req.refs(), method, req.CouponCode, req.IdempotencyKey)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intent_id":       result.Intent.ID,
		"state":           result.Intent.State,
		"method":          result.Intent.Method,
		"subtotal":        result.Intent.Subtotal,
		"discount_amount": result.Intent.DiscountAmount,
		"final_amount":    result.Intent.FinalAmount,
		"instructions":    result.Instructions,
	})
}

// CheckCoupon backs the live discount preview on the checkout page. It never
// consumes a usage slot.
func (h *Handler) CheckCoupon(c *gin.Context) {
	var req CouponCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "bad_request", "error": "Missing coupon code or amount"})
		return
	}

	quote, err := h.service.PreviewCoupon(c.Request.Context(), req.Code, req.Amount)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":            quote.Coupon.Code,
		"discount_type":   quote.Coupon.DiscountType,
		"discount_value":  quote.Coupon.DiscountValue,
		"discount_amount": quote.DiscountAmount,
		"final_amount":    quote.FinalAmount,
	})
}

func (h *Handler) GetPaymentHistory(c *gin.Context) {
	studentID := c.GetUint("user_id")
	if studentID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	intents, err := h.store.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		log.Printf("failed to load payment history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, intents)
}

func (h *Handler) ListEnrollments(c *gin.Context) {
	studentID := c.GetUint("user_id")
	if studentID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.enrollment.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		log.Printf("failed to load enrollments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load enrollments"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// respondCheckoutError maps service errors to stable user-facing codes.
// Validation and coupon failures carry their reason; anything touching
// verification or state stays generic so a forged-callback author learns
// nothing from the response.
func respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, svc.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "empty_cart", "error": "Your cart is empty"})
	case errors.Is(err, catalog.ErrUnknownItem):
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "unknown_item", "error": "One of the selected items is unavailable"})
	case errors.Is(err, svc.ErrUnsupportedMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "unsupported_method", "error": "Unknown payment method"})
	case errors.Is(err, coupons.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error_kind": "coupon_not_found", "error": "Coupon code not found"})
	case errors.Is(err, coupons.ErrExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "coupon_expired", "error": "This coupon is no longer valid"})
	case errors.Is(err, coupons.ErrBelowMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "coupon_below_minimum", "error": "Order amount is below the coupon minimum"})
	case errors.Is(err, coupons.ErrUsageExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error_kind": "coupon_usage_exceeded", "error": "This coupon has been fully redeemed"})
	case errors.Is(err, gateway.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error_kind": "gateway_unavailable", "error": "The payment gateway is unavailable, please try again"})
	default:
		log.Printf("checkout error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment could not be processed, please contact support"})
	}
}
