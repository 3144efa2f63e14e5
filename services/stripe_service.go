package services

import (
	"math"
	"strconv"
	"time"

	"checkout-service/models"

	"github.com/stripe/stripe-go/v80"
	portalsession "github.com/stripe/stripe-go/v80/billingportal/session"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/customer"
	"github.com/stripe/stripe-go/v80/webhook"
)

// Gateway is the payment-provider surface the controllers depend on. Stripe is
// the only implementation; the interface exists so handlers can be tested
// without hitting the Stripe API.
type Gateway interface {
	FindCustomerByEmail(email string) (*stripe.Customer, error)
	CreateCustomer(email string) (*stripe.Customer, error)
	GetCustomer(id string) (*stripe.Customer, error)
	CreateCheckoutSession(customerID string, req *models.CreateCheckoutSessionRequest) (*stripe.CheckoutSession, error)
	GetCheckoutSession(id string, expand ...string) (*stripe.CheckoutSession, error)
	CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error)
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type StripeService struct {
	SecretKey        string
	WebhookSecret    string
	AllowedCountries []string
}

func NewStripeService(secretKey, webhookSecret string, allowedCountries []string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{
		SecretKey:        secretKey,
		WebhookSecret:    webhookSecret,
		AllowedCountries: allowedCountries,
	}
}

// MinorUnits converts a decimal major-unit price (e.g. 19.99 dollars) to the
// integer minor-unit amount Stripe expects (1999 cents).
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// MajorUnits converts a Stripe minor-unit amount back to decimal major units
// for client-facing responses.
func MajorUnits(amount int64) float64 {
	return float64(amount) / 100
}

// FindCustomerByEmail returns the first Stripe customer with the given email,
// or nil when none exists.
func (s *StripeService) FindCustomerByEmail(email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	if iter.Next() {
		return iter.Customer(), nil
	}
	return nil, iter.Err()
}

func (s *StripeService) CreateCustomer(email string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.AddMetadata("created_via", "checkout_service")
	params.AddMetadata("first_order_date", time.Now().UTC().Format(time.RFC3339))
	return customer.New(params)
}

func (s *StripeService) GetCustomer(id string) (*stripe.Customer, error) {
	return customer.Get(id, nil)
}

// CreateCheckoutSession builds a card-only, single-payment checkout session
// from the cart. Quantities are passed through as given; unit prices are
// rounded to cents here and nowhere else.
func (s *StripeService) CreateCheckoutSession(customerID string, req *models.CreateCheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.Product.Name),
					Description: stripe.String(item.Product.Description),
					Metadata: map[string]string{
						"product_id": item.Product.ID,
						"category":   item.Product.Category,
					},
				},
				UnitAmount: stripe.Int64(MinorUnits(item.Product.Price)),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(req.CancelURL),
		Customer:           stripe.String(customerID),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(s.AllowedCountries),
		},
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
	params.AddMetadata("customer_id", customerID)
	params.AddMetadata("customer_email", req.CustomerEmail)
	params.AddMetadata("order_date", time.Now().UTC().Format(time.RFC3339))
	params.AddMetadata("item_count", strconv.Itoa(len(req.Items)))

	return session.New(params)
}

// GetCheckoutSession retrieves a session, expanding the given relations
// (e.g. "line_items", "customer").
func (s *StripeService) GetCheckoutSession(id string, expand ...string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	for _, e := range expand {
		params.AddExpand(e)
	}
	return session.Get(id, params)
}

func (s *StripeService) CreatePortalSession(customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	return portalsession.New(params)
}

// VerifyWebhook checks the Stripe-Signature header against the raw payload
// and signing secret, returning the decoded event on success.
func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookSecret)
}
