package services

import (
	"context"
	"strings"
	"time"

	"checkout-service/models"
	"checkout-service/sender"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// FulfillmentService turns a completed checkout session into an order summary
// and forwards it to the notifier. There are no inventory or storage side
// effects; Stripe keeps all customer and payment data.
type FulfillmentService struct {
	Gateway  Gateway
	Notifier sender.OrderNotifier
	Logger   *zap.Logger
}

func NewFulfillmentService(gateway Gateway, notifier sender.OrderNotifier, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		Gateway:  gateway,
		Notifier: notifier,
		Logger:   logger,
	}
}

// FulfillOrder re-fetches the customer and the session's line items from
// Stripe and hands the assembled summary to the notifier. Errors are returned
// for the caller to log; the webhook acknowledgment must not depend on them.
func (f *FulfillmentService) FulfillOrder(ctx context.Context, sess *stripe.CheckoutSession) error {
	f.Logger.Info("Fulfilling order", zap.String("session_id", sess.ID))

	summary := models.OrderSummary{
		SessionID:     sess.ID,
		AmountTotal:   MajorUnits(sess.AmountTotal),
		Currency:      string(sess.Currency),
		PaymentStatus: string(sess.PaymentStatus),
		Created:       time.Unix(sess.Created, 0).UTC(),
		Metadata:      sess.Metadata,
	}

	if sess.Customer != nil {
		cust, err := f.Gateway.GetCustomer(sess.Customer.ID)
		if err != nil {
			return err
		}
		summary.CustomerID = cust.ID
		summary.CustomerEmail = cust.Email
		summary.CustomerName = cust.Name
	}
	if summary.CustomerName == "" && sess.CustomerDetails != nil {
		summary.CustomerName = sess.CustomerDetails.Name
	}
	if summary.CustomerEmail == "" && sess.CustomerDetails != nil {
		summary.CustomerEmail = sess.CustomerDetails.Email
	}

	if sess.ShippingDetails != nil && sess.ShippingDetails.Address != nil {
		summary.ShippingAddress = formatAddress(sess.ShippingDetails.Address)
	}

	// Webhook payloads carry line items by reference only; re-fetch with the
	// expansion to get descriptions and amounts.
	expanded, err := f.Gateway.GetCheckoutSession(sess.ID, "line_items")
	if err != nil {
		return err
	}
	if expanded.LineItems != nil {
		for _, li := range expanded.LineItems.Data {
			summary.Items = append(summary.Items, models.SessionLineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				AmountTotal: MajorUnits(li.AmountTotal),
			})
		}
	}

	if err := f.Notifier.NotifyOrder(ctx, summary); err != nil {
		return err
	}

	f.Logger.Info("Order fulfilled",
		zap.String("session_id", summary.SessionID),
		zap.String("customer_id", summary.CustomerID),
		zap.String("customer_email", summary.CustomerEmail),
		zap.Float64("total", summary.AmountTotal),
		zap.Int("item_count", len(summary.Items)),
	)
	return nil
}

func formatAddress(a *stripe.Address) string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
