package models

import "time"

// Product is the cart-side snapshot of what the customer is buying. Prices are
// decimal major units (dollars); conversion to cents happens at the Stripe
// boundary.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

type CreateCheckoutSessionRequest struct {
	Items         []CartItem `json:"items" binding:"required"`
	CustomerEmail string     `json:"customerEmail" binding:"required,email"`
	SuccessURL    string     `json:"successUrl" binding:"required"`
	CancelURL     string     `json:"cancelUrl" binding:"required"`
}

type CreateCheckoutSessionResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

type CreatePortalRequest struct {
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
	ReturnURL     string `json:"returnUrl"`
}

type SessionLineItem struct {
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity"`
	AmountTotal float64 `json:"amount_total"`
}

// SessionSummary is what the confirmation page renders after a redirect back
// from Stripe. Amounts are converted back to major units.
type SessionSummary struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	CustomerEmail string            `json:"customer_email"`
	AmountTotal   float64           `json:"amount_total"`
	Currency      string            `json:"currency"`
	Created       int64             `json:"created"`
	LineItems     []SessionLineItem `json:"line_items"`
}

// OrderSummary is the fulfillment record assembled from a completed checkout
// session and handed to the order notifier. Stripe remains the system of
// record; this is never persisted.
type OrderSummary struct {
	SessionID       string            `json:"session_id"`
	CustomerID      string            `json:"customer_id"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerName    string            `json:"customer_name"`
	ShippingAddress string            `json:"shipping_address,omitempty"`
	AmountTotal     float64           `json:"amount_total"`
	Currency        string            `json:"currency"`
	PaymentStatus   string            `json:"payment_status"`
	Created         time.Time         `json:"created"`
	Items           []SessionLineItem `json:"items"`
	Metadata        map[string]string `json:"metadata"`
}
