package gateway

import (
	"context"

	"enrollment-app/internal/domain/payments"
)

// ManualAdapter is the offline/cash path. No redirect happens; the checkout
// service settles the intent immediately and enrollments wait in pending for
// a human to confirm payment.
type ManualAdapter struct{}

func NewManualAdapter() *ManualAdapter {
	return &ManualAdapter{}
}

func (a *ManualAdapter) BuildInstructions(_ context.Context, _ *payments.PaymentIntent) (*Instructions, error) {
	return &Instructions{Kind: KindNone}, nil
}
