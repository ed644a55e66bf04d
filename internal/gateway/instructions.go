package gateway

import (
	"context"
	"errors"

	"enrollment-app/internal/domain/payments"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

type Kind string

const (
	// KindFormPost instructs the client to auto-submit a signed form POST to
	// the gateway endpoint.
	KindFormPost Kind = "form_post"
	// KindRedirect instructs the client to navigate to an opaque gateway URL.
	KindRedirect Kind = "redirect"
	// KindNone means no redirect happens; settlement is handled offline.
	KindNone Kind = "none"
)

// Field is one opaque form field. Order matters to some gateways, so fields
// are a slice rather than a map.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Instructions tells the client how to hand the payer to the gateway.
type Instructions struct {
	Kind   Kind    `json:"kind"`
	Action string  `json:"action,omitempty"` // form_post target URL
	Fields []Field `json:"fields,omitempty"` // form_post fields, in order
	URL    string  `json:"url,omitempty"`    // redirect URL

	// GatewayRef is the gateway-side reference for this intent, when the
	// gateway issued one at initiation time. Not serialized to the client.
	GatewayRef string `json:"-"`
}

// Adapter builds gateway-specific instructions for an intent. Implementations
// must price from intent.FinalAmount only; client-supplied amounts never
// reach a gateway.
type Adapter interface {
	BuildInstructions(ctx context.Context, intent *payments.PaymentIntent) (*Instructions, error)
}

// Resumer is implemented by adapters whose instructions are minted gateway-side
// and must be fetched back, not re-created, when an intent that already carries
// a GatewayRef is initiated again.
type Resumer interface {
	ResumeInstructions(ctx context.Context, intent *payments.PaymentIntent) (*Instructions, error)
}
