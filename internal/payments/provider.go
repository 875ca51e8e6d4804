package payments

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"devstreak/internal/apperr"
	"devstreak/internal/config"
)

// Provider API base URLs per environment.
const (
	testBaseURL = "https://test.dodopayments.com"
	liveBaseURL = "https://live.dodopayments.com"
)

// HTTPProvider talks to the checkout provider's REST API.
type HTTPProvider struct {
	client *resty.Client
}

// NewHTTPProvider builds a provider client for the configured
// environment.
func NewHTTPProvider(cfg config.Config) *HTTPProvider {
	baseURL := testBaseURL
	if cfg.PaymentEnvironment == config.PaymentEnvLive {
		baseURL = liveBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.PaymentAPIKey).
		SetTimeout(15 * time.Second)
	return &HTTPProvider{client: client}
}

type checkoutRequest struct {
	ProductCart []cartItem      `json:"product_cart"`
	Customer    customerDetails `json:"customer"`
	ReturnURL   string          `json:"return_url"`
}

type cartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type customerDetails struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CreateCheckoutSession opens a hosted checkout for one product.
func (p *HTTPProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error) {
	quantity := params.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var session CheckoutSession
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(checkoutRequest{
			ProductCart: []cartItem{{ProductID: params.ProductID, Quantity: quantity}},
			Customer:    customerDetails{Email: params.CustomerEmail, Name: params.CustomerName},
			ReturnURL:   params.ReturnURL,
		}).
		SetResult(&session).
		Post("/checkouts")
	if err != nil {
		return CheckoutSession{}, apperr.Wrap(apperr.Upstream, "checkout provider unreachable", err)
	}
	if err := providerError(resp); err != nil {
		return CheckoutSession{}, err
	}
	return session, nil
}

// GetCheckoutSession retrieves a session's current state.
func (p *HTTPProvider) GetCheckoutSession(ctx context.Context, sessionID string) (CheckoutSession, error) {
	var session CheckoutSession
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&session).
		Get("/checkouts/" + sessionID)
	if err != nil {
		return CheckoutSession{}, apperr.Wrap(apperr.Upstream, "checkout provider unreachable", err)
	}
	if err := providerError(resp); err != nil {
		return CheckoutSession{}, err
	}
	return session, nil
}

// GetPayment retrieves the settled payment behind a session.
func (p *HTTPProvider) GetPayment(ctx context.Context, paymentID string) (ProviderPayment, error) {
	var payment ProviderPayment
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&payment).
		Get("/payments/" + paymentID)
	if err != nil {
		return ProviderPayment{}, apperr.Wrap(apperr.Upstream, "checkout provider unreachable", err)
	}
	if err := providerError(resp); err != nil {
		return ProviderPayment{}, err
	}
	return payment, nil
}

func providerError(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return apperr.New(apperr.NotFound, "checkout provider has no such record")
	case resp.StatusCode() == http.StatusTooManyRequests:
		return apperr.New(apperr.RateLimited, "checkout provider rate limit reached")
	case resp.IsError():
		return apperr.Newf(apperr.Upstream, "checkout provider returned %d", resp.StatusCode())
	}
	return nil
}
