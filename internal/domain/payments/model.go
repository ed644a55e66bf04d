package payments

import (
	"time"

	"enrollment-app/internal/domain/catalog"
)

type Method string

const (
	// MethodFormGateway redirects the payer via an auto-submitted signed form POST.
	MethodFormGateway Method = "form_gateway"
	// MethodStripe redirects the payer to a server-initiated Stripe Checkout URL.
	MethodStripe Method = "stripe"
	// MethodCash settles offline; enrollment is created pending confirmation.
	MethodCash Method = "cash"
)

func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodFormGateway, MethodStripe, MethodCash:
		return Method(s), true
	}
	return "", false
}

// PaymentIntent is the durable record of one logical checkout attempt. It is
// created at initiation with amounts snapshotted from the catalog and coupon,
// and only mutated through Store transitions afterwards.
type PaymentIntent struct {
	ID             string `gorm:"type:uuid;primaryKey" json:"id"`
	IdempotencyKey string `gorm:"not null;uniqueIndex:idx_payment_intents_idempotency_key" json:"idempotency_key"`
	StudentID      uint   `gorm:"not null;index" json:"student_id"`

	Lines []IntentLine `gorm:"foreignKey:PaymentIntentID" json:"lines"`

	CouponCode     *string `json:"coupon_code,omitempty"`
	Subtotal       int64   `gorm:"not null" json:"subtotal"`
	DiscountAmount int64   `gorm:"not null" json:"discount_amount"`
	FinalAmount    int64   `gorm:"not null" json:"final_amount"`

	Method Method `gorm:"type:varchar(20);not null" json:"method"`
	State  State  `gorm:"type:varchar(20);not null;index" json:"state"`

	// Proof is gateway verification data (signature, transaction id) recorded
	// at settlement for audit. GatewayRef is the gateway-side reference, when
	// the gateway issues one.
	Proof      *string `json:"proof,omitempty"`
	GatewayRef *string `json:"gateway_ref,omitempty"`

	Version int64 `gorm:"not null;default:1" json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// IntentLine is an immutable price snapshot of one purchased item. Later
// catalog price changes never alter an in-flight checkout.
type IntentLine struct {
	ID              uint             `gorm:"primaryKey" json:"-"`
	PaymentIntentID string           `gorm:"type:uuid;not null;index" json:"-"`
	ItemKind        catalog.ItemKind `gorm:"type:varchar(20);not null" json:"item_kind"`
	ItemID          uint             `gorm:"not null" json:"item_id"`
	Title           string           `json:"title"`
	UnitPrice       int64            `gorm:"not null" json:"unit_price"`
}
