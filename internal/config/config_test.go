package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SNUGGLI_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "snuggli.db", cfg.DB.Path)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.FastModel)
	assert.Equal(t, "gpt-4", cfg.AI.CapacityModel)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	t.Setenv("SNUGGLI_DB_DRIVER", "Postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNUGGLI_DB_DSN")
}

func TestValidate(t *testing.T) {
	base := AppConfig{
		SessionSecret: "secret",
		DB:            DBConfig{Driver: DriverSQLite},
		AI:            AIConfig{Timeout: time.Second},
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "unknown driver", mutate: func(c *AppConfig) { c.DB.Driver = "mysql" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *AppConfig) { c.AI.Timeout = 0 }, wantErr: true},
		{name: "empty secret", mutate: func(c *AppConfig) { c.SessionSecret = " " }, wantErr: true},
		{name: "postgres with dsn", mutate: func(c *AppConfig) {
			c.DB.Driver = DriverPostgres
			c.DB.DSN = "postgres://localhost/snuggli"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
