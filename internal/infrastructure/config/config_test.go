package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8081", cfg.Backend.URL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 3, cfg.Backend.Retries)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "console", cfg.Storage.Prefix)
	assert.True(t, cfg.Gate.EnforcePermissions)
	assert.False(t, cfg.Session.LogoutOnRefreshFailure)
	assert.Equal(t, 15*time.Minute, cfg.Dev.TokenTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                               "production",
		"BACKEND_URL":                       "https://api.example.com",
		"BACKEND_TIMEOUT":                   "2s",
		"STORAGE_DRIVER":                    "memory",
		"SESSION_LOGOUT_ON_REFRESH_FAILURE": "true",
		"GATE_ENFORCE_PERMISSIONS":          "false",
		"DEVICE_TOKEN":                      "dev-1",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.example.com", cfg.Backend.URL)
	assert.Equal(t, 2*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.True(t, cfg.Session.LogoutOnRefreshFailure)
	assert.False(t, cfg.Gate.EnforcePermissions)
	assert.Equal(t, "dev-1", cfg.Session.DeviceToken)
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":    {"STORAGE_DRIVER": "sqlite"},
		"relative url":      {"BACKEND_URL": "api/auth"},
		"negative retries":  {"BACKEND_RETRIES": "-1"},
		"zero timeout":      {"BACKEND_TIMEOUT": "0s"},
		"malformed boolean": {"GATE_ENFORCE_PERMISSIONS": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
