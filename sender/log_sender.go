package sender

import (
	"context"

	"checkout-service/models"

	"go.uber.org/zap"
)

// LogNotifier records the order summary in the service log. Swap in an email
// provider (SES, SendGrid) here when custom confirmation emails are needed.
type LogNotifier struct {
	Logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) NotifyOrder(_ context.Context, order models.OrderSummary) error {
	n.Logger.Info("Custom order notification",
		zap.String("session_id", order.SessionID),
		zap.String("customer_id", order.CustomerID),
		zap.String("customer_email", order.CustomerEmail),
		zap.Float64("order_total", order.AmountTotal),
		zap.String("currency", order.Currency),
		zap.Int("item_count", len(order.Items)),
	)
	return nil
}
