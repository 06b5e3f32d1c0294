package config

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "")
	t.Setenv("DELIVERY_FEE", "")
	t.Setenv("TOKEN_TTL", "")

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 499.0, cfg.FreeDeliveryThreshold)
	assert.Equal(t, 30.0, cfg.DeliveryFee)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("FREE_DELIVERY_THRESHOLD", "999")
	t.Setenv("DELIVERY_FEE", "not-a-number")
	t.Setenv("TOKEN_TTL", "1h")

	cfg := Load()

	assert.Equal(t, 999.0, cfg.FreeDeliveryThreshold)
	assert.Equal(t, 30.0, cfg.DeliveryFee)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Contains(t, cfg.PostgresDSN(), "host=db port=6543")
}

func TestGetEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret")
	assert.NoError(t, os.WriteFile(path, []byte("  s3cret\n"), 0o600))

	t.Setenv("JWT_SECRET_FILE", path)
	t.Setenv("JWT_SECRET", "from-env")

	assert.Equal(t, "s3cret", getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "default"))

	t.Setenv("JWT_SECRET_FILE", filepath.Join(dir, "missing"))
	assert.Equal(t, "from-env", getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", "default"))
}

func TestLoadWarnsAboutDefaultJWTSecret(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	t.Setenv("JWT_SECRET_FILE", "")
	t.Setenv("JWT_SECRET", "")
	cfg := Load()
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Contains(t, buf.String(), "JWT_SECRET not set")

	buf.Reset()
	t.Setenv("JWT_SECRET", "production-secret")
	cfg = Load()
	assert.Equal(t, "production-secret", cfg.JWTSecret)
	assert.NotContains(t, buf.String(), "JWT_SECRET not set")
}
