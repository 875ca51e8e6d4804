// Package payments wraps the external checkout provider and the
// product catalog sold through it.
package payments

import (
	"context"

	"devstreak/internal/config"
	"devstreak/internal/models"
)

// Product is a purchasable item from the catalog.
type Product struct {
	Key      string             `json:"key"`
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Price    int64              `json:"price"` // cents
	Currency string             `json:"currency"`
	Type     models.PaymentType `json:"type"`
}

// Catalog maps product keys to provider products.
type Catalog struct {
	products map[string]Product
}

// NewCatalog builds the catalog from configured provider product ids.
func NewCatalog(cfg config.Config) *Catalog {
	products := map[string]Product{
		"premium_monthly": {
			Key:      "premium_monthly",
			ID:       cfg.ProductIDMonthly,
			Name:     "Premium Monthly",
			Price:    1000,
			Currency: "USD",
			Type:     models.PaymentSubscription,
		},
		"premium_annual": {
			Key:      "premium_annual",
			ID:       cfg.ProductIDAnnual,
			Name:     "Premium Annual",
			Price:    10000,
			Currency: "USD",
			Type:     models.PaymentSubscription,
		},
		"shipping_guide": {
			Key:      "shipping_guide",
			ID:       cfg.ProductIDGuide,
			Name:     "Build In Public Guide",
			Price:    1900,
			Currency: "USD",
			Type:     models.PaymentOneTime,
		},
	}
	return &Catalog{products: products}
}

// ByKey looks up a product by its catalog key.
func (c *Catalog) ByKey(key string) (Product, bool) {
	p, ok := c.products[key]
	return p, ok
}

// CheckoutParams describe a checkout session to open with the provider.
type CheckoutParams struct {
	ProductID     string
	Quantity      int
	CustomerEmail string
	CustomerName  string
	ReturnURL     string
}

// CheckoutSession is the provider's view of a checkout.
type CheckoutSession struct {
	SessionID     string `json:"session_id"`
	CheckoutURL   string `json:"checkout_url"`
	PaymentStatus string `json:"payment_status"`
	PaymentID     string `json:"payment_id"`
	CustomerEmail string `json:"customer_email"`
}

// ProviderPayment is the provider's record of a settled payment.
type ProviderPayment struct {
	PaymentID     string `json:"payment_id"`
	TotalAmount   int64  `json:"total_amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
}

// Provider is the checkout collaborator. Implemented over the
// provider's REST API; stubbed in handler tests.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error)
	GetPayment(ctx context.Context, paymentID string) (ProviderPayment, error)
}
