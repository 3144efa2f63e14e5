package controllers

import (
	"net/http"
	"time"

	"checkout-service/config"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

type CheckoutController struct {
	Gateway services.Gateway
	Config  *config.Config
	Logger  *zap.Logger
}

// Health reports service liveness.
func (cc *CheckoutController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"env":       cc.Config.Env,
	})
}

// CreateCheckoutSession resolves (or creates) the Stripe customer for the
// given email and opens a hosted checkout session for the cart.
func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	var req models.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		cc.respondError(c, http.StatusBadRequest, err.Error(), "invalid_request", err)
		return
	}

	total := 0.0
	for _, item := range req.Items {
		total += item.Product.Price * float64(item.Quantity)
	}
	cc.Logger.Info("Creating checkout session",
		zap.String("customer_email", req.CustomerEmail),
		zap.Int("item_count", len(req.Items)),
		zap.Float64("total", total),
	)

	cust, err := cc.findOrCreateCustomer(req.CustomerEmail)
	if err != nil {
		cc.respondError(c, http.StatusInternalServerError, err.Error(), "checkout_session_creation_failed", err)
		return
	}

	sess, err := cc.Gateway.CreateCheckoutSession(cust.ID, &req)
	if err != nil {
		cc.respondError(c, http.StatusInternalServerError, err.Error(), "checkout_session_creation_failed", err)
		return
	}

	cc.Logger.Info("Checkout session created", zap.String("session_id", sess.ID))

	c.JSON(http.StatusOK, models.CreateCheckoutSessionResponse{
		URL:       sess.URL,
		SessionID: sess.ID,
	})
}

func (cc *CheckoutController) findOrCreateCustomer(email string) (*stripe.Customer, error) {
	cust, err := cc.Gateway.FindCustomerByEmail(email)
	if err != nil {
		return nil, err
	}
	if cust != nil {
		cc.Logger.Info("Found existing customer", zap.String("customer_id", cust.ID))
		return cust, nil
	}

	cust, err = cc.Gateway.CreateCustomer(email)
	if err != nil {
		return nil, err
	}
	cc.Logger.Info("Created new customer", zap.String("customer_id", cust.ID))
	return cust, nil
}

// GetSession returns the confirmation-page view of a checkout session, with
// amounts converted back to major units.
func (cc *CheckoutController) GetSession(c *gin.Context) {
	sessionID := c.Param("sessionId")

	sess, err := cc.Gateway.GetCheckoutSession(sessionID, "line_items", "customer")
	if err != nil {
		cc.respondError(c, http.StatusNotFound, "Session not found", "session_not_found", err)
		return
	}

	summary := models.SessionSummary{
		ID:            sess.ID,
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sess.CustomerEmail,
		AmountTotal:   services.MajorUnits(sess.AmountTotal),
		Currency:      string(sess.Currency),
		Created:       sess.Created,
		LineItems:     []models.SessionLineItem{},
	}
	if summary.CustomerEmail == "" && sess.CustomerDetails != nil {
		summary.CustomerEmail = sess.CustomerDetails.Email
	}
	if sess.LineItems != nil {
		for _, li := range sess.LineItems.Data {
			summary.LineItems = append(summary.LineItems, models.SessionLineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				AmountTotal: services.MajorUnits(li.AmountTotal),
			})
		}
	}

	c.JSON(http.StatusOK, summary)
}

// CreateCustomerPortal opens a Stripe billing-portal session for an existing
// customer, for self-service order history and payment methods.
func (cc *CheckoutController) CreateCustomerPortal(c *gin.Context) {
	var req models.CreatePortalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		cc.respondError(c, http.StatusBadRequest, err.Error(), "invalid_request", err)
		return
	}

	cust, err := cc.Gateway.FindCustomerByEmail(req.CustomerEmail)
	if err != nil {
		cc.respondError(c, http.StatusInternalServerError, err.Error(), "portal_creation_failed", err)
		return
	}
	if cust == nil {
		cc.respondError(c, http.StatusNotFound, "Customer not found", "customer_not_found", nil)
		return
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = cc.Config.FrontendURL
	}

	portal, err := cc.Gateway.CreatePortalSession(cust.ID, returnURL)
	if err != nil {
		cc.respondError(c, http.StatusInternalServerError, err.Error(), "portal_creation_failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
