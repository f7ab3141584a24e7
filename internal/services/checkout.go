package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"park-ticketing/internal/config"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/models"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrMissingEmail           = errors.New("customer email is required")
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
)

// SessionCreator abstracts the hosted-checkout call so handler tests can
// assert that Stripe is never reached on invalid input.
type SessionCreator interface {
	Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeSessionCreator struct {
	client *client.API
}

func (c stripeSessionCreator) Create(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.client.CheckoutSessions.New(params)
}

// CheckoutService turns a cart snapshot into a hosted Stripe Checkout
// session. It holds no state of its own: the cart and customer travel inside
// the session metadata and come back through the webhook.
type CheckoutService struct {
	sessions SessionCreator
	cfg      config.StripeConfig
	log      *logger.Logger
}

func NewCheckoutService(sc *client.API, cfg config.StripeConfig, log *logger.Logger) (*CheckoutService, error) {
	if cfg.SecretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		return nil, ErrStripeClientInitFailed
	}
	return &CheckoutService{
		sessions: stripeSessionCreator{client: sc},
		cfg:      cfg,
		log:      log,
	}, nil
}

// NewCheckoutServiceWithCreator wires a custom session creator; tests use it.
func NewCheckoutServiceWithCreator(creator SessionCreator, cfg config.StripeConfig, log *logger.Logger) *CheckoutService {
	return &CheckoutService{
		sessions: creator,
		cfg:      cfg,
		log:      log,
	}
}

// CreateSession validates the checkout payload and returns the hosted
// payment page URL. origin is the storefront origin the success/cancel
// redirects are built from.
func (s *CheckoutService) CreateSession(ctx context.Context, req models.CheckoutRequest, origin string) (string, error) {
	if len(req.CartItems) == 0 {
		return "", ErrEmptyCart
	}
	if req.Customer.Email == "" {
		return "", ErrMissingEmail
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		quantity := int64(item.Quantity)
		if quantity < 1 {
			quantity = 1
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("eur"),
				UnitAmount: stripe.Int64(int64(math.Round(item.Pass.Price * 100))),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Pass.Name),
				},
			},
			Quantity: stripe.Int64(quantity),
		})
	}

	cartJSON, err := json.Marshal(req.CartItems)
	if err != nil {
		return "", fmt.Errorf("failed to serialize cart: %w", err)
	}
	customerJSON, err := json.Marshal(req.Customer)
	if err != nil {
		return "", fmt.Errorf("failed to serialize customer: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:     lineItems,
		CustomerEmail: stripe.String(req.Customer.Email),
		SuccessURL:    stripe.String(origin + s.cfg.SuccessPath),
		CancelURL:     stripe.String(origin + s.cfg.CancelPath),
		Metadata: map[string]string{
			"cart":     string(cartJSON),
			"customer": string(customerJSON),
		},
	}

	s.log.LogPayment("SESSION", req.Customer.Email, fmt.Sprintf("Creating checkout session with %d line items", len(lineItems)))

	session, err := s.sessions.Create(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create checkout session: %v", err))
		return "", fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	s.log.LogPayment("SESSION", session.ID, "Checkout session created")
	return session.URL, nil
}
