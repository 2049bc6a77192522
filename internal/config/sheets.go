package config

import (
	"os"

	"github.com/Veraticus/spent/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig builds the Google Sheets writer configuration. Values
// come from v first (config file or SPENT_ env vars), then from the
// GOOGLE_SHEETS_* environment variables, then from defaults.
func LoadSheetsConfig(v *viper.Viper) (sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		cfg.ServiceAccountPath = ExpandPath(s)
	}
	cfg.ClientID = v.GetString("sheets.client_id")
	cfg.ClientSecret = v.GetString("sheets.client_secret")
	cfg.RefreshToken = v.GetString("sheets.refresh_token")
	cfg.SpreadsheetID = v.GetString("sheets.spreadsheet_id")
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		cfg.SpreadsheetName = s
	}
	if s := v.GetString("sheets.sheet_title"); s != "" {
		cfg.SheetTitle = s
	}
	if s := v.GetString("sheets.timezone"); s != "" {
		cfg.TimeZone = s
	}
	if v.IsSet("sheets.formatting") {
		cfg.EnableFormatting = v.GetBool("sheets.formatting")
	}

	fallback := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	if cfg.ServiceAccountPath == "" {
		if s := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); s != "" {
			cfg.ServiceAccountPath = ExpandPath(s)
		}
	}
	fallback(&cfg.ClientID, "GOOGLE_SHEETS_CLIENT_ID")
	fallback(&cfg.ClientSecret, "GOOGLE_SHEETS_CLIENT_SECRET")
	fallback(&cfg.RefreshToken, "GOOGLE_SHEETS_REFRESH_TOKEN")
	fallback(&cfg.SpreadsheetID, "GOOGLE_SHEETS_SPREADSHEET_ID")

	if err := cfg.Validate(); err != nil {
		return sheets.Config{}, err
	}
	return cfg, nil
}
