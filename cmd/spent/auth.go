package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/config"
	"github.com/Veraticus/spent/internal/sheets"
)

func sheetsAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize Google Sheets export",
		Long: `Run the Google OAuth2 consent flow and store the refresh token used by
'spent stats --sheets'.

Create an OAuth client of type "Desktop app" in the Google Cloud console
and pass its id and secret, or set sheets.client_id and
sheets.client_secret in the config file.`,
		RunE: runSheetsAuth,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client id")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret")
	cmd.Flags().String("listen", "localhost:8080", "Address for the OAuth2 callback")
	cmd.Flags().Duration("timeout", 5*time.Minute, "How long to wait for the browser callback")

	return cmd
}

func runSheetsAuth(cmd *cobra.Command, _ []string) error {
	clientID := firstNonEmpty(flagString(cmd, "client-id"), viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	clientSecret := firstNonEmpty(flagString(cmd, "client-secret"), viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	listen := flagString(cmd, "listen")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("%w: OAuth2 client id and secret are required (--client-id/--client-secret or sheets.client_id/sheets.client_secret)", common.ErrMissingConfig)
	}

	dir, err := config.DefaultDir()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	token, err := sheets.Authorize(cmd.Context(), sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    filepath.Join(dir, "sheets-token.json"),
		ListenAddr:   listen,
		Timeout:      timeout,
	}, out)
	if err != nil {
		return err
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("google did not return a refresh token; revoke the app's access and try again")
	}

	viper.Set("sheets.client_id", clientID)
	viper.Set("sheets.client_secret", clientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)
	if err := saveConfig(); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Google Sheets authorized. Use 'spent stats --sheets' to export."))
	return nil
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
