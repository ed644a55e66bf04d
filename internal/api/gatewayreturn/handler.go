package gatewayreturn

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"enrollment-app/config"
	svc "enrollment-app/internal/checkout"
	"enrollment-app/internal/domain/payments"
	"enrollment-app/internal/gateway"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

type Handler struct {
	service *svc.Service
}

func NewHandler(service *svc.Service) *Handler {
	return &Handler{service: service}
}

// FormReturn receives the form gateway's browser return. The payer always
// gets redirected back into the app; which page they land on depends on the
// settlement outcome, but verification details never leave the server.
func (h *Handler) FormReturn(c *gin.Context) {
	var ret gateway.FormReturn
	var err error
	if c.Request.Method == http.MethodGet {
		err = c.ShouldBindQuery(&ret)
	} else {
		err = c.ShouldBind(&ret)
	}
	if err != nil || ret.TransactionUUID == "" {
		c.Redirect(http.StatusFound, config.APP_URL+"/payment/failure")
		return
	}

	intent, err := h.service.HandleFormReturn(c.Request.Context(), ret)
	if err != nil {
		log.Printf("form gateway return for txn %s not settled: %v", ret.TransactionUUID, err)
		c.Redirect(http.StatusFound, config.APP_URL+"/payment/failure")
		return
	}
	if intent.State != payments.StateSettled {
		c.Redirect(http.StatusFound, config.APP_URL+"/payment/failure")
		return
	}

	c.Redirect(http.StatusFound, config.APP_URL+"/payment/success?intent="+intent.ID)
}

// StripeWebhook receives asynchronous settlement confirmation. Signature
// verification happens here at the transport boundary; amount reconciliation
// happens in the checkout service against the stored intent.
func (h *Handler) StripeWebhook(c *gin.Context) {
	endpointSecret := config.STRIPE_WEBHOOK_SECRET
	if endpointSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		log.Printf("stripe signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		h.handleSessionCompleted(c, &session, event.ID)
		return

	default:
		// Acknowledge unknown events to avoid retries
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}
}

func (h *Handler) handleSessionCompleted(c *gin.Context, session *stripe.CheckoutSession, eventID string) {
	if session.ClientReferenceID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	proof := "stripe:" + session.ID + ":" + eventID
	_, err := h.service.HandleStripeSettlement(c.Request.Context(), session.ClientReferenceID, session.AmountTotal, proof)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "received"})
	case errors.Is(err, payments.ErrUnknownIntent),
		errors.Is(err, svc.ErrAmountMismatch),
		errors.Is(err, payments.ErrInvalidTransition):
		// Non-retryable: a redelivery can never change the outcome.
		// Ack so the gateway stops; the intent state carries the truth.
		log.Printf("stripe settlement for session %s rejected: %v", session.ID, err)
		c.JSON(http.StatusOK, gin.H{"status": "rejected"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Settlement could not be recorded"})
	}
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
