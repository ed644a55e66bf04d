package gateway

import (
	"context"
	"fmt"
	"log"

	"enrollment-app/internal/domain/payments"

	"github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

// StripeAdapter drives the URL-redirect integration: a Checkout Session is
// created server-side at the intent's final amount and the client navigates
// to the opaque session URL.
type StripeAdapter struct {
	APIKey     string
	Currency   string
	SuccessURL string
	CancelURL  string
}

func NewStripeAdapter(apiKey, appURL string) *StripeAdapter {
	return &StripeAdapter{
		APIKey:     apiKey,
		Currency:   "npr",
		SuccessURL: appURL + "/payment/success",
		CancelURL:  appURL + "/payment/failure?canceled=1",
	}
}

func (a *StripeAdapter) BuildInstructions(_ context.Context, intent *payments.PaymentIntent) (*Instructions, error) {
	stripe.Key = a.APIKey

	params := &stripe.CheckoutSessionParams{
		SuccessURL:        stripe.String(a.SuccessURL),
		CancelURL:         stripe.String(a.CancelURL),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(intent.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(a.Currency),
					UnitAmount: stripe.Int64(intent.FinalAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(lineSummary(intent)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"intent_id":  intent.ID,
				"student_id": fmt.Sprint(intent.StudentID),
			},
		},
	}

	s, err := checkoutsession.New(params)
	if err != nil {
		log.Printf("stripe checkout session create failed for intent %s: %v", intent.ID, err)
		return nil, ErrGatewayUnavailable
	}

	return &Instructions{Kind: KindRedirect, URL: s.URL, GatewayRef: s.ID}, nil
}

// ResumeInstructions fetches the Checkout Session already recorded for the
// intent instead of minting a second one, so a retried initiation lands the
// payer on the same session URL.
func (a *StripeAdapter) ResumeInstructions(_ context.Context, intent *payments.PaymentIntent) (*Instructions, error) {
	stripe.Key = a.APIKey

	s, err := checkoutsession.Get(*intent.GatewayRef, nil)
	if err != nil {
		log.Printf("stripe checkout session fetch failed for intent %s: %v", intent.ID, err)
		return nil, ErrGatewayUnavailable
	}

	return &Instructions{Kind: KindRedirect, URL: s.URL, GatewayRef: s.ID}, nil
}

func lineSummary(intent *payments.PaymentIntent) string {
	if len(intent.Lines) == 1 {
		return intent.Lines[0].Title
	}
	return fmt.Sprintf("Enrollment (%d items)", len(intent.Lines))
}
