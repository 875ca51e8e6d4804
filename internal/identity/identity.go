// Package identity resolves bearer tokens to authenticated users via
// the external identity provider.
package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"devstreak/internal/apperr"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// HTTPVerifier calls the identity provider's token verification
// endpoint.
type HTTPVerifier struct {
	client    *resty.Client
	verifyURL string
}

// NewHTTPVerifier builds a verifier against the given endpoint. An
// empty endpoint yields a verifier that rejects everything, so a
// misconfigured deployment fails closed.
func NewHTTPVerifier(verifyURL string) *HTTPVerifier {
	client := resty.New().SetTimeout(10 * time.Second)
	return &HTTPVerifier{client: client, verifyURL: verifyURL}
}

// Verify resolves the token with the provider. Provider rejections map
// to unauthorized; provider outages map to upstream errors so callers
// can tell the two apart.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if v.verifyURL == "" {
		return Identity{}, apperr.New(apperr.Unauthorized, "identity verification is not configured")
	}
	if token == "" {
		return Identity{}, apperr.New(apperr.Unauthorized, "missing bearer token")
	}

	var ident Identity
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&ident).
		Post(v.verifyURL)
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.Upstream, "identity provider unreachable", err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return Identity{}, apperr.New(apperr.Unauthorized, "invalid or expired token")
	case resp.IsError():
		return Identity{}, apperr.Newf(apperr.Upstream, "identity provider returned %d", resp.StatusCode())
	}

	if ident.UserID == "" {
		return Identity{}, apperr.New(apperr.Unauthorized, "identity provider returned no user")
	}
	return ident, nil
}
