package stripe

import (
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// Client wraps the payment provider operations the checkout flow needs.
type Client interface {
	CreatePaymentIntent(amount int64, currency string, description string, metadata map[string]string) (*stripe.PaymentIntent, error)
	GetPaymentIntent(id string) (*stripe.PaymentIntent, error)
}

type stripeClient struct{}

func NewStripeClient(apiKey string) Client {
	stripe.Key = apiKey

	return &stripeClient{}
}

func (s *stripeClient) CreatePaymentIntent(amount int64, currency string, description string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	if description != "" {
		params.Description = stripe.String(description)
	}

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	return paymentintent.New(params)
}

func (s *stripeClient) GetPaymentIntent(id string) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, nil)
}
