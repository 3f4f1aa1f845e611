package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RepositoryConfig(t *testing.T) {
	t.Setenv("CONFIG_ENV", "local")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load(".")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "events", cfg.MQ.Exchange)
	assert.Contains(t, cfg.CORS.AllowOrigins, "http://localhost:3000")
	assert.Equal(t, 5, cfg.Breaker.FailureThreshold)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_ENV", "local")
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load(".")
	assert.ErrorContains(t, err, "unsupported store driver")
}

func TestDSN(t *testing.T) {
	cfg := defaults()
	cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Name = "u", "p", "h", "n"
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", cfg.DSN())
}
