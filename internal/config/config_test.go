package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("JWT_EXPIRATION", "30m")
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("STRIPE_DEFAULT_CURRENCY", "eur")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "eur", cfg.Stripe.DefaultCurrency)
	assert.Equal(t, "fitcoach", cfg.Database.Name)
	assert.Equal(t, "fitcoach.events", cfg.RabbitMQ.Exchange)
	assert.False(t, cfg.Auth.AllowUserIDParam)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestValidateRejectsUnknownAlgorithm(t *testing.T) {
	cfg := Config{
		JWT:      JWTConfig{Secret: "s", Algorithm: "RS256"},
		Database: DatabaseConfig{URI: "mongodb://localhost", Name: "x"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.Algorithm = "HS256"
	assert.NoError(t, cfg.Validate())
}
