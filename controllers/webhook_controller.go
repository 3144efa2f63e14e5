package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = int64(65536)

// WebhookVerifier is the slice of the payment gateway the webhook needs.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// Fulfiller processes a completed checkout session.
type Fulfiller interface {
	FulfillOrder(ctx context.Context, sess *stripe.CheckoutSession) error
}

// WebhookController verifies inbound Stripe events and dispatches them
// through a fixed handler table. Every verified delivery is acknowledged with
// 200 regardless of handler outcome; Stripe's redelivery depends on it.
type WebhookController struct {
	Verifier    WebhookVerifier
	Fulfillment Fulfiller
	Logger      *zap.Logger

	handlers map[stripe.EventType]func(context.Context, stripe.Event)
}

func NewWebhookController(verifier WebhookVerifier, fulfillment Fulfiller, logger *zap.Logger) *WebhookController {
	wc := &WebhookController{
		Verifier:    verifier,
		Fulfillment: fulfillment,
		Logger:      logger,
	}
	wc.handlers = map[stripe.EventType]func(context.Context, stripe.Event){
		"checkout.session.completed":    wc.handleCheckoutCompleted,
		"checkout.session.expired":      wc.handleCheckoutExpired,
		"payment_intent.payment_failed": wc.handlePaymentFailed,
	}
	return wc
}

// HandleWebhook reads the raw body (required for signature verification),
// verifies it, dispatches, and acknowledges.
func (wc *WebhookController) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		wc.Logger.Warn("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event, err := wc.Verifier.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		wc.Logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wc.dispatch(c.Request.Context(), event)

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// dispatch routes a verified event to its handler. Handler errors never reach
// the HTTP response.
func (wc *WebhookController) dispatch(ctx context.Context, event stripe.Event) {
	handler, ok := wc.handlers[event.Type]
	if !ok {
		wc.Logger.Info("Unhandled webhook event type", zap.String("event_type", string(event.Type)))
		return
	}
	handler(ctx, event)
}

func (wc *WebhookController) handleCheckoutCompleted(ctx context.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		wc.Logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		return
	}

	wc.Logger.Info("Payment successful for session", zap.String("session_id", sess.ID))

	if err := wc.Fulfillment.FulfillOrder(ctx, &sess); err != nil {
		wc.Logger.Error("Error fulfilling order",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
	}
}

func (wc *WebhookController) handleCheckoutExpired(_ context.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		wc.Logger.Error("Failed to unmarshal checkout session", zap.Error(err))
		return
	}
	wc.Logger.Info("Checkout session expired", zap.String("session_id", sess.ID))
}

func (wc *WebhookController) handlePaymentFailed(_ context.Context, event stripe.Event) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		wc.Logger.Error("Failed to unmarshal payment intent", zap.Error(err))
		return
	}
	wc.Logger.Warn("Payment failed", zap.String("payment_intent_id", pi.ID))
}
