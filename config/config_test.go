package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
		t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "3000", cfg.Port)
		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, []string{"US", "CA"}, cfg.AllowedCountries)
		assert.NotEmpty(t, cfg.FrontendURL)
	})

	t.Run("Missing Secret Key", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "")

		_, err := LoadConfig()

		assert.Error(t, err)
	})

	t.Run("Custom Country List", func(t *testing.T) {
		t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
		t.Setenv("SHIPPING_COUNTRIES", "US, CA, GB")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, []string{"US", "CA", "GB"}, cfg.AllowedCountries)
	})
}
