package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	Env                 string
	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendURL         string
	AllowedCountries    []string
}

func LoadConfig() (*Config, error) {
	// Best-effort .env load; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "3000"),
		Env:                 getEnv("NODE_ENV", "development"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:54338"),
		AllowedCountries:    splitList(getEnv("SHIPPING_COUNTRIES", "US,CA")),
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("missing required environment variable STRIPE_SECRET_KEY")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
