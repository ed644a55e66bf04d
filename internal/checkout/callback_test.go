package checkout

import (
	"context"
	"testing"

	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initiateForReturn sets up an initiated form-gateway intent, optionally with
// a coupon applied.
func initiateForReturn(t *testing.T, env *testEnv, couponCode string) *payments.PaymentIntent {
	t.Helper()
	if couponCode != "" {
		env.validator.Quote = &coupons.Quote{
			Coupon:         coupons.Coupon{Code: couponCode, DiscountType: coupons.DiscountPercentage, DiscountValue: 10},
			Subtotal:       16000,
			DiscountAmount: 1600,
			FinalAmount:    14400,
		}
	}
	result, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1), courseRef(2)}, payments.MethodFormGateway, couponCode, "key-ret")
	require.NoError(t, err)
	return result.Intent
}

func genuineReturn(env *testEnv, intent *payments.PaymentIntent) gateway.FormReturn {
	return gateway.FormReturn{
		TransactionUUID: intent.ID,
		TotalAmount:     intent.FinalAmount,
		Status:          "COMPLETE",
		Signature:       env.form.Sign(intent.FinalAmount, intent.ID),
	}
}

func TestHandleFormReturn_UnknownIntent(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.HandleFormReturn(context.Background(), gateway.FormReturn{
		TransactionUUID: "no-such-intent",
		TotalAmount:     100,
		Status:          "COMPLETE",
	})

	assert.ErrorIs(t, err, payments.ErrUnknownIntent)
	assert.Empty(t, env.activator.Activations)
}

func TestHandleFormReturn_BadSignature(t *testing.T) {
	env := newTestEnv()
	intent := initiateForReturn(t, env, "")

	ret := genuineReturn(env, intent)
	ret.Signature = "Zm9yZ2VkLXNpZ25hdHVyZQ=="

	_, err := env.svc.HandleFormReturn(context.Background(), ret)

	assert.ErrorIs(t, err, ErrVerificationFailed)
	// A failed verification never activates anything, and the intent keeps
	// waiting for a genuine callback.
	assert.Equal(t, payments.StateInitiated, env.store.Intents[intent.ID].State)
	assert.Empty(t, env.activator.Activations)
}

func TestHandleFormReturn_AmountMismatchFailsIntent(t *testing.T) {
	env := newTestEnv()
	intent := initiateForReturn(t, env, "")

	// Signature is genuine for the stored amount but the claimed total is
	// lower; any nonzero difference forces failed, never settled.
	ret := genuineReturn(env, intent)
	ret.TotalAmount = intent.FinalAmount - 1

	_, err := env.svc.HandleFormReturn(context.Background(), ret)

	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, payments.StateFailed, env.store.Intents[intent.ID].State)
	assert.Empty(t, env.activator.Activations)
	assert.Empty(t, env.redeem.Codes)
}

func TestHandleFormReturn_GatewayReportsFailure(t *testing.T) {
	env := newTestEnv()
	intent := initiateForReturn(t, env, "")

	ret := genuineReturn(env, intent)
	ret.Status = "CANCELED"

	updated, err := env.svc.HandleFormReturn(context.Background(), ret)

	require.NoError(t, err)
	assert.Equal(t, payments.StateFailed, updated.State)
	assert.Empty(t, env.activator.Activations)
}

func TestHandleFormReturn_SettlesAndActivates(t *testing.T) {
	env := newTestEnv()
	intent := initiateForReturn(t, env, "WELCOME10")

	updated, err := env.svc.HandleFormReturn(context.Background(), genuineReturn(env, intent))

	require.NoError(t, err)
	assert.Equal(t, payments.StateSettled, updated.State)
	assert.Equal(t, []string{intent.ID}, env.activator.Activations)
	assert.Equal(t, []enrollments.Status{enrollments.StatusActive}, env.activator.Statuses)
	// Coupon usage commits together with the settlement.
	assert.Equal(t, []string{"WELCOME10"}, env.redeem.Codes)
}

func TestHandleFormReturn_DuplicateDeliveryIsNoOp(t *testing.T) {
	env := newTestEnv()
	intent := initiateForReturn(t, env, "WELCOME10")
	ret := genuineReturn(env, intent)

	_, err := env.svc.HandleFormReturn(context.Background(), ret)
	require.NoError(t, err)

	// Gateway retries the callback with the identical proof.
	updated, err := env.svc.HandleFormReturn(context.Background(), ret)

	require.NoError(t, err)
	assert.Equal(t, payments.StateSettled, updated.State)
	assert.Len(t, env.activator.Activations, 1)
	assert.Len(t, env.redeem.Codes, 1)
}

func TestHandleStripeSettlement_Settles(t *testing.T) {
	env := newTestEnv()
	result, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodStripe, "", "key-stripe")
	require.NoError(t, err)

	updated, err := env.svc.HandleStripeSettlement(context.Background(), result.Intent.ID, 8000, "stripe:cs_test_1:evt_1")

	require.NoError(t, err)
	assert.Equal(t, payments.StateSettled, updated.State)
	assert.Equal(t, []string{result.Intent.ID}, env.activator.Activations)
}

func TestHandleStripeSettlement_AmountMismatch(t *testing.T) {
	env := newTestEnv()
	result, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodStripe, "", "key-stripe")
	require.NoError(t, err)

	_, err = env.svc.HandleStripeSettlement(context.Background(), result.Intent.ID, 7999, "stripe:cs_test_1:evt_1")

	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, payments.StateFailed, env.store.Intents[result.Intent.ID].State)
	assert.Empty(t, env.activator.Activations)
}

func TestHandleStripeSettlement_UnknownIntent(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.HandleStripeSettlement(context.Background(), "forged-ref", 8000, "stripe:x:y")

	assert.ErrorIs(t, err, payments.ErrUnknownIntent)
}
