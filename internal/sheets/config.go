// Package sheets writes statistics reports to Google Sheets.
package sheets

import (
	"fmt"
	"time"

	"github.com/Veraticus/spent/internal/common"
)

// Config selects the spreadsheet and how to authenticate to it. Exactly one
// of OAuth2 credentials (client id, secret and refresh token) or a service
// account key file must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	// SpreadsheetID reuses an existing spreadsheet; otherwise one named
	// SpreadsheetName is created.
	SpreadsheetID    string
	SpreadsheetName  string
	SheetTitle       string
	TimeZone         string
	BatchSize        int
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

// DefaultConfig returns the report defaults without credentials.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Spending Report",
		SheetTitle:       "Statistics",
		TimeZone:         "UTC",
		BatchSize:        500,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

func (c *Config) hasOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate reports missing credentials as common.ErrMissingConfig and any
// other problem as common.ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case !c.hasOAuth() && c.ServiceAccountPath == "":
		return fmt.Errorf("%w: no authentication method configured; run 'spent sheets-auth' or set sheets.service_account_path", common.ErrMissingConfig)
	case c.hasOAuth() && c.ServiceAccountPath != "":
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}

	invalid := func(msg string) error {
		return fmt.Errorf("%w: %s", common.ErrInvalidConfig, msg)
	}
	if c.SheetTitle == "" {
		return invalid("sheet title is required")
	}
	if c.BatchSize <= 0 {
		return invalid("batch size must be positive")
	}
	if c.RetryAttempts < 0 {
		return invalid("retry attempts cannot be negative")
	}
	if c.RetryDelay < 0 {
		return invalid("retry delay cannot be negative")
	}
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return invalid(fmt.Sprintf("unknown time zone %q", c.TimeZone))
		}
	}
	return nil
}
