package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// No env vars, no config file in the test working directory.
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.ExportTimeout)
	assert.Equal(t, "cleaned_online_retail.csv", cfg.Paths.CleanedFile)
	assert.Equal(t, 10, cfg.Analytics.TopProducts)
	assert.Equal(t, 100, cfg.Analytics.HighValueCustomers)
	assert.True(t, cfg.Security.RateLimit.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RETAILPULSE_SERVER_PORT", "9090")
	t.Setenv("RETAILPULSE_LOGGING_LEVEL", "debug")
	t.Setenv("RETAILPULSE_ANALYTICS_TOP_PRODUCTS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 25, cfg.Analytics.TopProducts)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("RETAILPULSE_SERVER_PORT", "99999")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"negative read timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, true},
		{"no origins", func(c *Config) { c.Security.AllowedOrigins = nil }, true},
		{"zero top products", func(c *Config) { c.Analytics.TopProducts = 0 }, true},
		{"max page below page", func(c *Config) { c.Analytics.MaxPageSize = 10; c.Analytics.PageSize = 100 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 9999
	fileCfg.Paths.BaseDir = "/srv/retail"
	fileCfg.Logging.Level = "warn"

	envCfg := *Default()
	envCfg.Server.Port = 0 // unset in env

	merged := mergeConfigs(fileCfg, envCfg)

	assert.Equal(t, 9999, merged.Server.Port)
	assert.Equal(t, "/srv/retail", merged.Paths.BaseDir)
	assert.Equal(t, "warn", merged.Logging.Level)
}
