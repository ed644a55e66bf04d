package checkout

import (
	"context"
	"fmt"

	"enrollment-app/internal/domain/catalog"
	"enrollment-app/internal/domain/coupons"
	"enrollment-app/internal/domain/enrollments"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"

	"gorm.io/gorm"
)

// MockPriceBook implements PriceBook for testing
type MockPriceBook struct {
	Items map[catalog.ItemRef]catalog.PricedItem
}

func (m *MockPriceBook) GetPrice(_ context.Context, ref catalog.ItemRef) (*catalog.PricedItem, error) {
	item, ok := m.Items[ref]
	if !ok {
		return nil, catalog.ErrUnknownItem
	}
	return &item, nil
}

// MockValidator implements CouponValidator for testing
type MockValidator struct {
	Quote *coupons.Quote
	Err   error

	Calls int
}

func (m *MockValidator) Validate(_ context.Context, _ string, _ int64) (*coupons.Quote, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quote, nil
}

// MockStore implements IntentStore in memory with the real transition rules
type MockStore struct {
	Intents map[string]*payments.PaymentIntent
	Created int
	Refs    map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{
		Intents: map[string]*payments.PaymentIntent{},
		Refs:    map[string]string{},
	}
}

func (m *MockStore) FindActiveByKey(_ context.Context, key string) (*payments.PaymentIntent, error) {
	for _, in := range m.Intents {
		if in.IdempotencyKey == key && !in.State.IsTerminal() {
			return in, nil
		}
	}
	return nil, nil
}

func (m *MockStore) FindOrCreate(_ context.Context, intent *payments.PaymentIntent) (*payments.PaymentIntent, bool, error) {
	// Like the unique index: any intent holding the key wins, terminal or not.
	for _, in := range m.Intents {
		if in.IdempotencyKey == intent.IdempotencyKey {
			return in, false, nil
		}
	}
	m.Created++
	intent.ID = fmt.Sprintf("intent-%d", m.Created)
	if intent.State == "" {
		intent.State = payments.StateCreated
	}
	m.Intents[intent.ID] = intent
	return intent, true, nil
}

func (m *MockStore) Get(_ context.Context, id string) (*payments.PaymentIntent, error) {
	intent, ok := m.Intents[id]
	if !ok {
		return nil, payments.ErrUnknownIntent
	}
	return intent, nil
}

func (m *MockStore) Transition(_ context.Context, id string, target payments.State, proof *string) (*payments.PaymentIntent, error) {
	intent, ok := m.Intents[id]
	if !ok {
		return nil, payments.ErrUnknownIntent
	}
	if intent.State == target {
		return intent, nil
	}
	if !payments.CanTransition(intent.State, target) {
		return nil, payments.ErrInvalidTransition
	}
	intent.State = target
	if proof != nil {
		intent.Proof = proof
	}
	return intent, nil
}

func (m *MockStore) Settle(_ context.Context, id string, proof string, hook func(tx *gorm.DB, intent *payments.PaymentIntent) error) (*payments.PaymentIntent, error) {
	intent, ok := m.Intents[id]
	if !ok {
		return nil, payments.ErrUnknownIntent
	}
	if intent.State == payments.StateSettled {
		return intent, nil
	}
	if !payments.CanTransition(intent.State, payments.StateSettled) {
		return nil, payments.ErrInvalidTransition
	}
	intent.State = payments.StateSettled
	intent.Proof = &proof
	if hook != nil {
		if err := hook(nil, intent); err != nil {
			return nil, err
		}
	}
	return intent, nil
}

func (m *MockStore) SetGatewayRef(_ context.Context, id string, ref string) error {
	intent, ok := m.Intents[id]
	if !ok {
		return payments.ErrUnknownIntent
	}
	intent.GatewayRef = &ref
	m.Refs[id] = ref
	return nil
}

// MockActivator implements Activator for testing
type MockActivator struct {
	Activations []string
	Statuses    []enrollments.Status
	Err         error
}

func (m *MockActivator) Activate(_ *gorm.DB, intent *payments.PaymentIntent, status enrollments.Status) error {
	if m.Err != nil {
		return m.Err
	}
	m.Activations = append(m.Activations, intent.ID)
	m.Statuses = append(m.Statuses, status)
	return nil
}

// MockRedirectAdapter stands in for the Stripe adapter. Every BuildInstructions
// call mints a distinct session URL, the way the real gateway would, so tests
// can prove a retry resumed the first session instead of opening another.
type MockRedirectAdapter struct {
	URL string
	Ref string
	Err error

	BuildCalls  int
	ResumeCalls int
	lastURL     string
}

func (m *MockRedirectAdapter) BuildInstructions(_ context.Context, _ *payments.PaymentIntent) (*gateway.Instructions, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.BuildCalls++
	m.lastURL = fmt.Sprintf("%s/%d", m.URL, m.BuildCalls)
	return &gateway.Instructions{Kind: gateway.KindRedirect, URL: m.lastURL, GatewayRef: m.Ref}, nil
}

func (m *MockRedirectAdapter) ResumeInstructions(_ context.Context, _ *payments.PaymentIntent) (*gateway.Instructions, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.ResumeCalls++
	return &gateway.Instructions{Kind: gateway.KindRedirect, URL: m.lastURL, GatewayRef: m.Ref}, nil
}

// redeemRecorder counts coupon redemptions within the settle hook
type redeemRecorder struct {
	Codes []string
	Err   error
}

func (r *redeemRecorder) Redeem(_ *gorm.DB, code string) error {
	if r.Err != nil {
		return r.Err
	}
	r.Codes = append(r.Codes, code)
	return nil
}
