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

func courseRef(id uint) catalog.ItemRef {
	return catalog.ItemRef{Kind: catalog.KindCourse, ID: id}
}

type testEnv struct {
	svc       *Service
	store     *MockStore
	validator *MockValidator
	activator *MockActivator
	redeem    *redeemRecorder
	form      *gateway.FormPostAdapter
	redirect  *MockRedirectAdapter
}

func newTestEnv() *testEnv {
	store := NewMockStore()
	validator := &MockValidator{}
	activator := &MockActivator{}
	redeem := &redeemRecorder{}
	redirect := &MockRedirectAdapter{URL: "https://pay.example/session", Ref: "cs_test_1"}

	priceBook := &MockPriceBook{Items: map[catalog.ItemRef]catalog.PricedItem{
		courseRef(1): {Ref: courseRef(1), Title: "Accounting Basics", UnitPrice: 8000},
		courseRef(2): {Ref: courseRef(2), Title: "Business Law", UnitPrice: 8000},
	}}

	form := gateway.NewFormPostAdapter("https://gateway.example/pay", "EDU-001", "top-secret", "https://app.example")
	adapters := map[payments.Method]gateway.Adapter{
		payments.MethodFormGateway: form,
		payments.MethodStripe:      redirect,
		payments.MethodCash:        gateway.NewManualAdapter(),
	}

	svc := NewService(priceBook, validator, store, activator, adapters, form, redeem.Redeem)
	return &testEnv{svc: svc, store: store, validator: validator, activator: activator, redeem: redeem, form: form, redirect: redirect}
}

func TestInitiate_EmptyCart(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Initiate(context.Background(), 7, nil, payments.MethodFormGateway, "", "key-1")

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, env.store.Created)
}

func TestInitiate_UnknownItem(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Initiate(context.Background(), 7, []catalog.ItemRef{courseRef(99)}, payments.MethodFormGateway, "", "key-1")

	assert.ErrorIs(t, err, catalog.ErrUnknownItem)
	assert.Equal(t, 0, env.store.Created)
}

func TestInitiate_UnsupportedMethod(t *testing.T) {
	env := newTestEnv()
	delete(env.svc.adapters, payments.MethodStripe)

	_, err := env.svc.Initiate(context.Background(), 7, []catalog.ItemRef{courseRef(1)}, payments.MethodStripe, "", "key-1")

	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestInitiate_FormGateway(t *testing.T) {
	env := newTestEnv()

	result, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1), courseRef(2)}, payments.MethodFormGateway, "", "key-1")

	require.NoError(t, err)
	assert.Equal(t, int64(16000), result.Intent.Subtotal)
	assert.Equal(t, int64(16000), result.Intent.FinalAmount)
	assert.Equal(t, payments.StateInitiated, result.Intent.State)
	assert.Len(t, result.Intent.Lines, 2)
	assert.Equal(t, gateway.KindFormPost, result.Instructions.Kind)
	// Nothing settles at initiation time.
	assert.Empty(t, env.activator.Activations)
	assert.Empty(t, env.redeem.Codes)
}

func TestInitiate_WithCoupon(t *testing.T) {
	env := newTestEnv()
	env.validator.Quote = &coupons.Quote{
		Coupon:         coupons.Coupon{Code: "WELCOME10", DiscountType: coupons.DiscountPercentage, DiscountValue: 10},
		Subtotal:       16000,
		DiscountAmount: 1600,
		FinalAmount:    14400,
	}

	result, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1), courseRef(2)}, payments.MethodFormGateway, "WELCOME10", "key-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1600), result.Intent.DiscountAmount)
	assert.Equal(t, int64(14400), result.Intent.FinalAmount)
	require.NotNil(t, result.Intent.CouponCode)
	assert.Equal(t, "WELCOME10", *result.Intent.CouponCode)
	// Validation never consumes the usage slot.
	assert.Empty(t, env.redeem.Codes)
}

func TestInitiate_CouponErrorLeavesCartUntouched(t *testing.T) {
	env := newTestEnv()
	env.validator.Err = coupons.ErrExpired

	_, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1), courseRef(2)}, payments.MethodFormGateway, "EXPIRED1", "key-1")

	assert.ErrorIs(t, err, coupons.ErrExpired)
	assert.Equal(t, 0, env.store.Created)
}

func TestInitiate_IdempotentOnKey(t *testing.T) {
	env := newTestEnv()

	first, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodFormGateway, "", "abc")
	require.NoError(t, err)

	// Retry with a coupon this time; the differing input must be ignored.
	env.validator.Err = coupons.ErrNotFound
	second, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodFormGateway, "BOGUS", "abc")
	require.NoError(t, err)

	assert.Equal(t, 1, env.store.Created)
	assert.Equal(t, first.Intent.ID, second.Intent.ID)
	assert.Equal(t, int64(8000), second.Intent.FinalAmount)
	assert.Equal(t, first.Instructions, second.Instructions)
	// The retry never re-validated anything.
	assert.Equal(t, 0, env.validator.Calls)
}

func TestInitiate_RedirectGatewayStoresRef(t *testing.T) {
	env := newTestEnv()

	result, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodStripe, "", "key-1")

	require.NoError(t, err)
	assert.Equal(t, gateway.KindRedirect, result.Instructions.Kind)
	assert.Equal(t, "https://pay.example/session/1", result.Instructions.URL)
	assert.Equal(t, "cs_test_1", env.store.Refs[result.Intent.ID])
}

func TestInitiate_RetryResumesRedirectSession(t *testing.T) {
	env := newTestEnv()

	first, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodStripe, "", "key-1")
	require.NoError(t, err)

	second, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodStripe, "", "key-1")
	require.NoError(t, err)

	// The retry hands back the session minted on the first call; a second
	// session is never opened.
	assert.Equal(t, first.Instructions.URL, second.Instructions.URL)
	assert.Equal(t, 1, env.redirect.BuildCalls)
	assert.Equal(t, 1, env.redirect.ResumeCalls)
	assert.Equal(t, "cs_test_1", env.store.Refs[first.Intent.ID])
}

func TestInitiate_SettledKeyAcknowledged(t *testing.T) {
	env := newTestEnv()

	first, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodCash, "", "key-cash")
	require.NoError(t, err)
	require.Equal(t, payments.StateSettled, first.Intent.State)

	// The double-click lands after the cash settlement already finished; the
	// key belongs to a terminal intent but the caller still gets it back.
	second, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodCash, "", "key-cash")

	require.NoError(t, err)
	assert.Equal(t, first.Intent.ID, second.Intent.ID)
	assert.Equal(t, payments.StateSettled, second.Intent.State)
	assert.Len(t, env.activator.Activations, 1)
}

func TestInitiate_GatewayUnavailable(t *testing.T) {
	env := newTestEnv()
	env.svc.adapters[payments.MethodStripe] = &MockRedirectAdapter{Err: gateway.ErrGatewayUnavailable}

	_, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodStripe, "", "key-1")

	assert.ErrorIs(t, err, gateway.ErrGatewayUnavailable)
}

func TestInitiate_CashSettlesImmediatelyPending(t *testing.T) {
	env := newTestEnv()

	result, err := env.svc.Initiate(context.Background(), 7,
		[]catalog.ItemRef{courseRef(1)}, payments.MethodCash, "", "key-1")

	require.NoError(t, err)
	assert.Equal(t, gateway.KindNone, result.Instructions.Kind)
	assert.Equal(t, payments.StateSettled, result.Intent.State)
	require.NotNil(t, result.Intent.Proof)
	assert.Equal(t, "manual", *result.Intent.Proof)
	require.Len(t, env.activator.Statuses, 1)
	assert.Equal(t, enrollments.StatusPending, env.activator.Statuses[0])
}

func TestComputeAmount_Idempotent(t *testing.T) {
	items := []catalog.PricedItem{
		{Ref: courseRef(1), UnitPrice: 8000},
		{Ref: courseRef(2), UnitPrice: 8000},
	}
	validator := &MockValidator{Quote: &coupons.Quote{
		Coupon:         coupons.Coupon{Code: "WELCOME10"},
		Subtotal:       16000,
		DiscountAmount: 1600,
		FinalAmount:    14400,
	}}

	first, _, err := ComputeAmount(context.Background(), items, "WELCOME10", validator)
	require.NoError(t, err)
	second, _, err := ComputeAmount(context.Background(), items, "WELCOME10", validator)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Totals{Subtotal: 16000, DiscountAmount: 1600, FinalAmount: 14400}, first)
}

func TestComputeAmount_NoCoupon(t *testing.T) {
	items := []catalog.PricedItem{{Ref: courseRef(1), UnitPrice: 8000}}

	totals, quote, err := ComputeAmount(context.Background(), items, "", &MockValidator{})

	require.NoError(t, err)
	assert.Nil(t, quote)
	assert.Equal(t, Totals{Subtotal: 8000, DiscountAmount: 0, FinalAmount: 8000}, totals)
}

func TestComputeAmount_EmptyCart(t *testing.T) {
	_, _, err := ComputeAmount(context.Background(), nil, "", &MockValidator{})

	assert.ErrorIs(t, err, ErrEmptyCart)
}
