package routes

import (
	"enrollment-app/config"
	"enrollment-app/database"
	adminapi "enrollment-app/internal/api/admin"
	catalogapi "enrollment-app/internal/api/catalog"
	checkoutapi "enrollment-app/internal/api/checkout"
	"enrollment-app/internal/api/gatewayreturn"
	"enrollment-app/internal/app/http/middleware"
	"enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	db := database.DB

	priceBook := catalog.NewPriceBook(db)
	validator := coupons.NewValidator(db)
	store := payments.NewStore(db)
	activator := enrollments.NewActivator(db)

	formAdapter := gateway.NewFormPostAdapter(
		config.FORM_GATEWAY_URL,
		config.FORM_GATEWAY_MERCHANT_CODE,
		config.FORM_GATEWAY_SECRET,
		config.APP_URL,
	)
	adapters := map[payments.Method]gateway.Adapter{
		payments.MethodFormGateway: formAdapter,
		payments.MethodStripe:      gateway.NewStripeAdapter(config.STRIPE_SECRET_KEY, config.APP_URL),
		payments.MethodCash:        gateway.NewManualAdapter(),
	}

	service := checkout.NewService(priceBook, validator, store, activator, adapters, formAdapter, coupons.Redeem)

	checkoutHandler := checkoutapi.NewHandler(service, store, activator)
	returnHandler := gatewayreturn.NewHandler(service)

	// Gateway-facing endpoints stay outside the sanitizer; their payloads are
	// signed and must arrive byte-identical.
	r.POST("/webhook", returnHandler.StripeWebhook)
	r.GET("/gateway/return", returnHandler.FormReturn)
	r.POST("/gateway/return", returnHandler.FormReturn)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.GET("/courses", catalogapi.ListCourses)
	public.POST("/coupons/check", checkoutHandler.CheckCoupon)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.POST("/checkout/initiate", checkoutHandler.Initiate)
	auth.GET("/payments", checkoutHandler.GetPaymentHistory)
	auth.GET("/enrollments", checkoutHandler.ListEnrollments)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/coupons", adminapi.ListCoupons)
	admin.POST("/coupons", adminapi.CreateCoupon)
}
