package checkout

import (
	"context"
	"errors"
	"log"

	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"

	"gorm.io/gorm"
)

const manualProof = "manual"

// Service orchestrates checkout initiation and settlement. The cart page,
// the single-course modal and the enrollment form are all thin callers of
// Initiate; amount and coupon logic live only here.
type Service struct {
	priceBook PriceBook
	validator CouponValidator
	store     IntentStore
	activator Activator
	adapters  map[payments.Method]gateway.Adapter
	verifier  FormVerifier
	redeem    RedeemFunc
}

func NewService(
	priceBook PriceBook,
	validator CouponValidator,
	store IntentStore,
	activator Activator,
	adapters map[payments.Method]gateway.Adapter,
	verifier FormVerifier,
	redeem RedeemFunc,
) *Service {
	return &Service{
		priceBook: priceBook,
		validator: validator,
		store:     store,
		activator: activator,
		adapters:  adapters,
		verifier:  verifier,
		redeem:    redeem,
	}
}

// InitiationResult pairs the gateway instructions with the intent they belong
// to. Nothing is final until the callback (or, for cash, the immediate
// settlement) confirms.
type InitiationResult struct {
	Intent       *payments.PaymentIntent
	Instructions *gateway.Instructions
}

// Initiate turns a set of item references into a payment intent plus gateway
// instructions. Re-submitting the same idempotency key returns the stored
// intent's instructions; differing input on the retry is ignored.
func (s *Service) Initiate(ctx context.Context, studentID uint, refs []catalog.ItemRef, method payments.Method, couponCode, idempotencyKey string) (*InitiationResult, error) {
	// A retried request collapses onto the stored intent before any input is
	// re-validated; differing items, coupon or method on the retry are
	// ignored entirely.
	if existing, err := s.store.FindActiveByKey(ctx, idempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return s.instruct(ctx, existing)
	}

	if len(refs) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]catalog.PricedItem, 0, len(refs))
	for _, ref := range refs {
		item, err := s.priceBook.GetPrice(ctx, ref)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	totals, quote, err := ComputeAmount(ctx, items, couponCode, s.validator)
	if err != nil {
		return nil, err
	}

	lines := make([]payments.IntentLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, payments.IntentLine{
			ItemKind:  item.Ref.Kind,
			ItemID:    item.Ref.ID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
		})
	}

	var code *string
	if quote != nil {
		code = &quote.Coupon.Code
	}

	intent, _, err := s.store.FindOrCreate(ctx, &payments.PaymentIntent{
		IdempotencyKey: idempotencyKey,
		StudentID:      studentID,
		Lines:          lines,
		CouponCode:     code,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		FinalAmount:    totals.FinalAmount,
		Method:         method,
		State:          payments.StateCreated,
	})
	if err != nil {
		return nil, err
	}

	return s.instruct(ctx, intent)
}

// instruct builds gateway instructions for a stored intent and advances its
// state. Only the stored intent speaks here; request input never reaches a
// gateway. An intent that already carries a gateway reference resumes that
// session rather than opening a second one, so a retry hands back the same
// redirect URL.
func (s *Service) instruct(ctx context.Context, intent *payments.PaymentIntent) (*InitiationResult, error) {
	adapter, ok := s.adapters[intent.Method]
	if !ok {
		return nil, ErrUnsupportedMethod
	}

	var instructions *gateway.Instructions
	var err error
	if resumer, ok := adapter.(gateway.Resumer); ok && intent.GatewayRef != nil && *intent.GatewayRef != "" {
		instructions, err = resumer.ResumeInstructions(ctx, intent)
	} else {
		instructions, err = adapter.BuildInstructions(ctx, intent)
	}
	if err != nil {
		return nil, err
	}

	if instructions.GatewayRef != "" && (intent.GatewayRef == nil || *intent.GatewayRef == "") {
		if err := s.store.SetGatewayRef(ctx, intent.ID, instructions.GatewayRef); err != nil {
			return nil, err
		}
	}

	if intent.Method == payments.MethodCash {
		settled, err := s.store.Settle(ctx, intent.ID, manualProof, s.settleHook(enrollments.StatusPending))
		if err != nil {
			return nil, err
		}
		return &InitiationResult{Intent: settled, Instructions: instructions}, nil
	}

	if intent.State == payments.StateCreated {
		intent, err = s.store.Transition(ctx, intent.ID, payments.StateInitiated, nil)
		if err != nil {
			return nil, err
		}
	}

	return &InitiationResult{Intent: intent, Instructions: instructions}, nil
}

// PreviewCoupon backs the live discount preview on the checkout page.
func (s *Service) PreviewCoupon(ctx context.Context, code string, amount int64) (*coupons.Quote, error) {
	return s.validator.Validate(ctx, code, amount)
}

// settleHook redeems the applied coupon and activates enrollments inside the
// settlement transaction. A coupon whose limit was exhausted between
// initiation and settlement is logged but does not fail the settlement; the
// payer already paid the discounted amount.
func (s *Service) settleHook(status enrollments.Status) func(tx *gorm.DB, intent *payments.PaymentIntent) error {
	return func(tx *gorm.DB, intent *payments.PaymentIntent) error {
		if intent.CouponCode != nil && *intent.CouponCode != "" {
			if err := s.redeem(tx, *intent.CouponCode); err != nil {
				if errors.Is(err, coupons.ErrUsageExceeded) {
					log.Printf("coupon %s over limit at settlement of intent %s", *intent.CouponCode, intent.ID)
				} else {
					return err
				}
			}
		}
		return s.activator.Activate(tx, intent, status)
	}
}
