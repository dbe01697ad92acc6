package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REBRICKABLE_API_KEY", "REBRICKABLE_BASE_URL", "DATABASE_URL", "PORT",
		"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_PATH", "CATALOG_TIMEOUT",
		"CATALOG_RPS", "CATALOG_BURST", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, DefaultCatalogURL, cfg.RebrickableBaseURL)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REBRICKABLE_API_KEY", "secret")
	t.Setenv("DATABASE_URL", "sqlite://brickstat.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CATALOG_TIMEOUT", "2s")
	t.Setenv("CATALOG_RPS", "0.5")
	t.Setenv("CATALOG_BURST", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.RebrickableAPIKey)
	assert.Equal(t, "sqlite://brickstat.db", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.CatalogTimeout)
	assert.Equal(t, 0.5, cfg.CatalogRPS)
	assert.Equal(t, 2, cfg.CatalogBurst)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "brickstat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rebrickable_api_key: from-file
port: "8081"
catalog_timeout: 3s
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.RebrickableAPIKey)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.CatalogTimeout)
}

func TestLoad_BadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaults()
		cfg.RebrickableAPIKey = "key"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.RebrickableAPIKey = "" }, wantErr: true},
		{name: "empty database url", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.CatalogTimeout = 0 }, wantErr: true},
		{name: "zero rps", mutate: func(c *Config) { c.CatalogRPS = 0 }, wantErr: true},
		{name: "zero burst", mutate: func(c *Config) { c.CatalogBurst = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "brickstat.db?_foreign_keys=on", withForeignKeys("brickstat.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", withForeignKeys("file:x?mode=memory"))
	assert.Equal(t, "file:x?_fk=1", withForeignKeys("file:x?_fk=1"))
}
