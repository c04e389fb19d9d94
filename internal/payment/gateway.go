// Package payment creates and inspects hosted checkout sessions.
package payment

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Product is the priced item of a cart line.
type Product struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CartItem is one cart line.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

// Address is the billing address of a customer.
type Address struct {
	Country string `json:"country,omitempty"`
}

// CustomerDetails identifies who paid.
type CustomerDetails struct {
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	Address *Address `json:"address,omitempty"`
}

// Session is a checkout session as the frontend and invoices see it.
type Session struct {
	ID              string           `json:"id"`
	URL             string           `json:"url,omitempty"`
	PaymentIntent   string           `json:"payment_intent,omitempty"`
	PaymentStatus   string           `json:"payment_status"`
	Status          string           `json:"status,omitempty"`
	Currency        string           `json:"currency"`
	AmountTotal     int64            `json:"amount_total"`
	CustomerDetails *CustomerDetails `json:"customer_details,omitempty"`
}

// Gateway is the payment provider port.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, cart []CartItem) (string, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

var ErrEmptyCart = errors.New("cart is empty")

// UnitAmount converts a price in major units to minor units.
func UnitAmount(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ValidateCart checks every line has a product name, a non-negative price
// and a positive quantity.
func ValidateCart(cart []CartItem) error {
	if len(cart) == 0 {
		return ErrEmptyCart
	}
	for _, it := range cart {
		if strings.TrimSpace(it.Product.Name) == "" || it.Product.Price < 0 || it.Quantity <= 0 {
			return errors.New("invalid cart item")
		}
	}
	return nil
}

// StripeGateway talks to Stripe Checkout.
type StripeGateway struct {
	sc          *client.API
	frontendURL string
}

func NewStripeGateway(secretKey, frontendURL string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// checkoutParams builds card-only payment mode params with USD line items.
func (g *StripeGateway) checkoutParams(cart []CartItem) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(cart))
	for _, it := range cart {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(it.Product.Name),
				},
				UnitAmount: stripe.Int64(UnitAmount(it.Product.Price)),
			},
			Quantity: stripe.Int64(it.Quantity),
		})
	}
	return &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          items,
		SuccessURL:         stripe.String(g.frontendURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(g.frontendURL + "/cancel"),
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, cart []CartItem) (string, error) {
	params := g.checkoutParams(cart)
	params.Context = ctx
	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return s.URL, nil
}

func (g *StripeGateway) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.sc.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripe(s), nil
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		Status:        string(s.Status),
		Currency:      string(s.Currency),
		AmountTotal:   s.AmountTotal,
	}
	if s.PaymentIntent != nil {
		out.PaymentIntent = s.PaymentIntent.ID
	}
	if d := s.CustomerDetails; d != nil {
		out.CustomerDetails = &CustomerDetails{Name: d.Name, Email: d.Email}
		if d.Address != nil {
			out.CustomerDetails.Address = &Address{Country: d.Address.Country}
		}
	}
	return out
}
