package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/config"
)

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("ERP_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("ERP_DATABASE_DRIVER", "postgres")
	t.Setenv("ERP_DATABASE_DSN", "host=db dbname=erp")
	t.Setenv("ERP_INVENTORY_ALLOW_NEGATIVE", "false")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres", cfg.Database.Store().Driver)
	assert.False(t, cfg.Inventory.AllowNegative)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "erp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
auth:
  jwt_secret: from-file
  token_ttl: 2h
log:
  level: debug
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Inventory.AllowNegative, "default kept")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing secret", func(c *config.Config) { c.Auth.JWTSecret = "" }},
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "oracle" }},
		{"empty dsn", func(c *config.Config) { c.Database.DSN = "" }},
		{"bad port", func(c *config.Config) { c.Server.Port = 0 }},
		{"zero ttl", func(c *config.Config) { c.Auth.TokenTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Auth.JWTSecret = "x"
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
