package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"enrollment-app/internal/domain/payments"
)

var ErrBadSignature = errors.New("gateway signature mismatch")

// FormPostAdapter drives gateways that take a browser-submitted POST of
// signed fields. The merchant signature covers the amount and transaction
// UUID, so the payer cannot alter either between our page and the gateway.
type FormPostAdapter struct {
	Endpoint     string
	MerchantCode string
	Secret       string
	SuccessURL   string
	FailureURL   string
}

func NewFormPostAdapter(endpoint, merchantCode, secret, appURL string) *FormPostAdapter {
	return &FormPostAdapter{
		Endpoint:     endpoint,
		MerchantCode: merchantCode,
		Secret:       secret,
		SuccessURL:   appURL + "/payment/success",
		FailureURL:   appURL + "/payment/failure",
	}
}

func (a *FormPostAdapter) BuildInstructions(_ context.Context, intent *payments.PaymentIntent) (*Instructions, error) {
	amount := strconv.FormatInt(intent.FinalAmount, 10)
	return &Instructions{
		Kind:   KindFormPost,
		Action: a.Endpoint,
		Fields: []Field{
			{Name: "merchant_code", Value: a.MerchantCode},
			{Name: "total_amount", Value: amount},
			{Name: "transaction_uuid", Value: intent.ID},
			{Name: "success_url", Value: a.SuccessURL},
			{Name: "failure_url", Value: a.FailureURL},
			{Name: "signed_field_names", Value: "total_amount,transaction_uuid,product_code"},
			{Name: "signature", Value: a.Sign(intent.FinalAmount, intent.ID)},
		},
	}, nil
}

// Sign computes the merchant signature over the amount, transaction UUID and
// merchant code with the shared secret.
func (a *FormPostAdapter) Sign(amount int64, transactionUUID string) string {
	message := fmt.Sprintf("total_amount=%d,transaction_uuid=%s,product_code=%s",
		amount, transactionUUID, a.MerchantCode)
	mac := hmac.New(sha256.New, []byte(a.Secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// FormReturn is the payload the gateway sends back through the payer's
// browser. Status and amount are treated as claims until the signature over
// the stored intent parameters checks out.
type FormReturn struct {
	TransactionUUID string `form:"transaction_uuid" json:"transaction_uuid"`
	TotalAmount     int64  `form:"total_amount" json:"total_amount"`
	Status          string `form:"status" json:"status"`
	Signature       string `form:"signature" json:"signature"`
}

// VerifyReturn recomputes the expected signature from the intent's stored
// amount and ID, never from the inbound payload, and compares in constant
// time. The client-supplied success flag alone is never trusted.
func (a *FormPostAdapter) VerifyReturn(intent *payments.PaymentIntent, ret FormReturn) error {
	expected := a.Sign(intent.FinalAmount, intent.ID)
	if !hmac.Equal([]byte(expected), []byte(ret.Signature)) {
		return ErrBadSignature
	}
	return nil
}
