package sender

import (
	"context"

	"checkout-service/models"
)

// OrderNotifier forwards a fulfilled order summary to whatever channel is
// configured. Stripe already sends receipt emails; implementations here cover
// additional custom notifications.
type OrderNotifier interface {
	NotifyOrder(ctx context.Context, order models.OrderSummary) error
}
