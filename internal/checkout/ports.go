package checkout

import (
	"context"

	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"

	"gorm.io/gorm"
)

// PriceBook resolves item references to price snapshots.
type PriceBook interface {
	GetPrice(ctx context.Context, ref catalog.ItemRef) (*catalog.PricedItem, error)
}

// CouponValidator returns a discount decision for a code and subtotal.
type CouponValidator interface {
	Validate(ctx context.Context, code string, subtotal int64) (*coupons.Quote, error)
}

// IntentStore is the durable record of checkout attempts.
type IntentStore interface {
	FindActiveByKey(ctx context.Context, key string) (*payments.PaymentIntent, error)
	FindOrCreate(ctx context.Context, intent *payments.PaymentIntent) (*payments.PaymentIntent, bool, error)
	Get(ctx context.Context, id string) (*payments.PaymentIntent, error)
	Transition(ctx context.Context, id string, target payments.State, proof *string) (*payments.PaymentIntent, error)
	Settle(ctx context.Context, id string, proof string, hook func(tx *gorm.DB, intent *payments.PaymentIntent) error) (*payments.PaymentIntent, error)
	SetGatewayRef(ctx context.Context, id string, ref string) error
}

// Activator creates enrollments inside the settlement transaction.
type Activator interface {
	Activate(tx *gorm.DB, intent *payments.PaymentIntent, status enrollments.Status) error
}

// FormVerifier checks a form-gateway return payload against a stored intent.
type FormVerifier interface {
	VerifyReturn(intent *payments.PaymentIntent, ret gateway.FormReturn) error
}

// RedeemFunc consumes one coupon usage slot within the settlement transaction.
type RedeemFunc func(tx *gorm.DB, code string) error
