// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Environments accepted for the checkout provider.
const (
	PaymentEnvTest = "test_mode"
	PaymentEnvLive = "live_mode"
)

// Config keeps the runtime settings for the service.
type Config struct {
	Addr         string
	DatabasePath string
	StaticDir    string

	// SiteBaseURL is where checkout return links point back to.
	SiteBaseURL string

	// IdentityVerifyURL is the identity provider endpoint that resolves
	// a bearer token to a user identity. Empty disables remote
	// verification (the server then rejects every request).
	IdentityVerifyURL string

	AnthropicAPIKey string
	AnthropicModel  string

	PaymentAPIKey      string
	PaymentEnvironment string

	ProductIDMonthly string
	ProductIDAnnual  string
	ProductIDGuide   string
}

// Load reads configuration from environment variables with defaults
// where a sane one exists.
func Load() (Config, error) {
	cfg := Config{
		Addr:               envOrDefault("DEVSTREAK_ADDR", ":8080"),
		DatabasePath:       envOrDefault("DEVSTREAK_DB_PATH", "data/devstreak.db"),
		StaticDir:          envOrDefault("DEVSTREAK_STATIC_DIR", "web/dist"),
		SiteBaseURL:        envOrDefault("DEVSTREAK_SITE_URL", "http://localhost:8080"),
		IdentityVerifyURL:  strings.TrimSpace(os.Getenv("DEVSTREAK_IDENTITY_VERIFY_URL")),
		AnthropicAPIKey:    strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		AnthropicModel:     envOrDefault("DEVSTREAK_ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		PaymentAPIKey:      strings.TrimSpace(os.Getenv("DEVSTREAK_PAYMENTS_API_KEY")),
		PaymentEnvironment: envOrDefault("DEVSTREAK_PAYMENTS_ENV", PaymentEnvTest),
		ProductIDMonthly:   strings.TrimSpace(os.Getenv("DEVSTREAK_PRODUCT_ID_MONTHLY")),
		ProductIDAnnual:    strings.TrimSpace(os.Getenv("DEVSTREAK_PRODUCT_ID_ANNUAL")),
		ProductIDGuide:     strings.TrimSpace(os.Getenv("DEVSTREAK_PRODUCT_ID_GUIDE")),
	}

	if cfg.PaymentEnvironment != PaymentEnvTest && cfg.PaymentEnvironment != PaymentEnvLive {
		return cfg, fmt.Errorf("DEVSTREAK_PAYMENTS_ENV must be %q or %q", PaymentEnvTest, PaymentEnvLive)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
