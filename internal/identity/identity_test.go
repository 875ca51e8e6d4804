package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstreak/internal/apperr"
)

func verifierFor(t *testing.T, handler http.HandlerFunc) *HTTPVerifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPVerifier(srv.URL)
}

func TestVerify_Success(t *testing.T) {
	v := verifierFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Identity{UserID: "user-1", Email: "dev@example.com", Name: "Dev"})
	})

	ident, err := v.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.UserID)
	assert.Equal(t, "dev@example.com", ident.Email)
}

func TestVerify_RejectedToken(t *testing.T) {
	v := verifierFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := v.Verify(context.Background(), "bad-token")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestVerify_ProviderOutageIsUpstream(t *testing.T) {
	v := verifierFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := v.Verify(context.Background(), "any-token")
	assert.Equal(t, apperr.Upstream, apperr.KindOf(err))
}

func TestVerify_EmptyUserIsUnauthorized(t *testing.T) {
	v := verifierFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Identity{})
	})

	_, err := v.Verify(context.Background(), "any-token")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestVerify_UnconfiguredFailsClosed(t *testing.T) {
	v := NewHTTPVerifier("")
	_, err := v.Verify(context.Background(), "any-token")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}
