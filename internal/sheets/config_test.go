package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spent/internal/common"
)

func TestConfigValidation(t *testing.T) {
	base := DefaultConfig()

	tests := []struct {
		name    string
		errMsg  string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name: "valid oauth config",
			mutate: func(c *Config) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
			},
		},
		{
			name:   "valid service account config",
			mutate: func(c *Config) { c.ServiceAccountPath = "/path/to/key.json" },
		},
		{
			name:    "missing auth",
			mutate:  func(*Config) {},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "partial oauth credentials",
			mutate: func(c *Config) {
				c.ClientID, c.RefreshToken = "id", "token"
			},
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name: "multiple auth methods",
			mutate: func(c *Config) {
				c.ClientID, c.ClientSecret, c.RefreshToken = "id", "secret", "token"
				c.ServiceAccountPath = "/path/to/key.json"
			},
			wantErr: true,
			errMsg:  "multiple authentication methods",
		},
		{
			name: "zero retry delay is valid",
			mutate: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.RetryAttempts = 0
				c.RetryDelay = 0
			},
		},
		{
			name: "negative retry delay",
			mutate: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.RetryDelay = -1 * time.Second
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
		{
			name: "unknown time zone",
			mutate: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.TimeZone = "Mars/Olympus"
			},
			wantErr: true,
			errMsg:  "unknown time zone",
		},
		{
			name: "zero batch size",
			mutate: func(c *Config) {
				c.ServiceAccountPath = "/path/to/key.json"
				c.BatchSize = 0
			},
			wantErr: true,
			errMsg:  "batch size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidation_Sentinels(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.Validate(), common.ErrMissingConfig)

	cfg.ServiceAccountPath = "/path/to/key.json"
	cfg.SheetTitle = ""
	assert.ErrorIs(t, cfg.Validate(), common.ErrInvalidConfig)
}
