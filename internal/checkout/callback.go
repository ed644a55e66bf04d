package checkout

import (
	"context"
	"fmt"
	"log"
	"strings"

	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"
)

// HandleFormReturn reconciles the form gateway's browser return against the
// stored intent. It fails closed: signature first, then exact amount, and
// only then the gateway's own status flag.
func (s *Service) HandleFormReturn(ctx context.Context, ret gateway.FormReturn) (*payments.PaymentIntent, error) {
	intent, err := s.store.Get(ctx, ret.TransactionUUID)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.VerifyReturn(intent, ret); err != nil {
		log.Printf("form return verification failed for intent %s: %v", intent.ID, err)
		return nil, ErrVerificationFailed
	}

	if ret.TotalAmount != intent.FinalAmount {
		log.Printf("form return amount mismatch for intent %s: got %d, expected %d",
			intent.ID, ret.TotalAmount, intent.FinalAmount)
		proof := fmt.Sprintf("amount-mismatch:%d", ret.TotalAmount)
		if _, err := s.store.Transition(ctx, intent.ID, payments.StateFailed, &proof); err != nil {
			log.Printf("failed to mark intent %s failed: %v", intent.ID, err)
		}
		return nil, ErrAmountMismatch
	}

	if !strings.EqualFold(ret.Status, "COMPLETE") {
		proof := "gateway-status:" + ret.Status
		return s.store.Transition(ctx, intent.ID, payments.StateFailed, &proof)
	}

	return s.store.Settle(ctx, intent.ID, ret.Signature, s.settleHook(enrollments.StatusActive))
}

// HandleStripeSettlement settles an intent confirmed by a verified Stripe
// webhook event. The transport layer has already checked the event signature;
// this still confirms the captured amount against the stored intent before
// anything activates.
func (s *Service) HandleStripeSettlement(ctx context.Context, intentID string, amount int64, proof string) (*payments.PaymentIntent, error) {
	intent, err := s.store.Get(ctx, intentID)
	if err != nil {
		return nil, err
	}

	if amount != intent.FinalAmount {
		log.Printf("stripe settlement amount mismatch for intent %s: got %d, expected %d",
			intent.ID, amount, intent.FinalAmount)
		failProof := fmt.Sprintf("amount-mismatch:%d", amount)
		if _, err := s.store.Transition(ctx, intent.ID, payments.StateFailed, &failProof); err != nil {
			log.Printf("failed to mark intent %s failed: %v", intent.ID, err)
		}
		return nil, ErrAmountMismatch
	}

	return s.store.Settle(ctx, intent.ID, proof, s.settleHook(enrollments.StatusActive))
}
