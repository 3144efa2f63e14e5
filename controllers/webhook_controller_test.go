package controllers

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

type MockFulfiller struct{ mock.Mock }

func (m *MockFulfiller) FulfillOrder(ctx context.Context, sess *stripe.CheckoutSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func webhookRouter(fulfiller *MockFulfiller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	verifier := services.NewStripeService("sk_test_dummy", testWebhookSecret, nil)
	wc := NewWebhookController(verifier, fulfiller, zap.NewNop())
	r := gin.New()
	r.POST("/webhook", wc.HandleWebhook)
	return r
}

func eventPayload(eventType, objectJSON string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_test_1","object":"event","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, objectJSON,
	))
}

// signHeader produces a Stripe-Signature header valid for payload under secret.
func signHeader(payload []byte, secret string) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func postWebhook(r *gin.Engine, payload []byte, sigHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleWebhook(t *testing.T) {
	completedPayload := eventPayload("checkout.session.completed",
		`{"id":"cs_test_123","object":"checkout.session","amount_total":3998,"currency":"usd","payment_status":"paid"}`)

	t.Run("Invalid Signature Rejected", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		w := postWebhook(r, completedPayload, signHeader(completedPayload, "whsec_wrong_secret"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fulfiller.AssertNotCalled(t, "FulfillOrder", mock.Anything, mock.Anything)
	})

	t.Run("Missing Signature Rejected", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		w := postWebhook(r, completedPayload, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fulfiller.AssertNotCalled(t, "FulfillOrder", mock.Anything, mock.Anything)
	})

	t.Run("Tampered Payload Rejected", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		header := signHeader(completedPayload, testWebhookSecret)
		tampered := bytes.Replace(completedPayload, []byte("3998"), []byte("1"), 1)
		w := postWebhook(r, tampered, header)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		fulfiller.AssertNotCalled(t, "FulfillOrder", mock.Anything, mock.Anything)
	})

	t.Run("Completed Session Fulfilled Once", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		fulfiller.On("FulfillOrder", mock.Anything, mock.MatchedBy(func(sess *stripe.CheckoutSession) bool {
			return sess.ID == "cs_test_123"
		})).Return(nil).Once()

		w := postWebhook(r, completedPayload, signHeader(completedPayload, testWebhookSecret))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		fulfiller.AssertExpectations(t)
		fulfiller.AssertNumberOfCalls(t, "FulfillOrder", 1)
	})

	t.Run("Fulfillment Error Still Acknowledged", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		fulfiller.On("FulfillOrder", mock.Anything, mock.Anything).
			Return(errors.New("stripe unavailable")).Once()

		w := postWebhook(r, completedPayload, signHeader(completedPayload, testWebhookSecret))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("Expired Session Logged Only", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		payload := eventPayload("checkout.session.expired",
			`{"id":"cs_test_exp","object":"checkout.session"}`)
		w := postWebhook(r, payload, signHeader(payload, testWebhookSecret))

		assert.Equal(t, http.StatusOK, w.Code)
		fulfiller.AssertNotCalled(t, "FulfillOrder", mock.Anything, mock.Anything)
	})

	t.Run("Failed Payment Logged Only", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		payload := eventPayload("payment_intent.payment_failed",
			`{"id":"pi_test_1","object":"payment_intent"}`)
		w := postWebhook(r, payload, signHeader(payload, testWebhookSecret))

		assert.Equal(t, http.StatusOK, w.Code)
		fulfiller.AssertNotCalled(t, "FulfillOrder", mock.Anything, mock.Anything)
	})

	t.Run("Unknown Event Acknowledged", func(t *testing.T) {
		fulfiller := new(MockFulfiller)
		r := webhookRouter(fulfiller)

		payload := eventPayload("invoice.paid", `{"id":"in_test_1","object":"invoice"}`)
		w := postWebhook(r, payload, signHeader(payload, testWebhookSecret))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		fulfiller.AssertNotCalled(t, "FulfillOrder", mock.Anything, mock.Anything)
	})
}
