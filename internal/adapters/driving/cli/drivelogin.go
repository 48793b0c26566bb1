package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	drivenoauth "github.com/custodia-labs/arrivals/internal/adapters/driven/oauth"
	"github.com/custodia-labs/arrivals/internal/adapters/driving/oauth"
	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/logger"
)

var settingsDriveLoginCmd = &cobra.Command{
	Use:   "drive-login",
	Short: "Sign in to Google Drive",
	Long: `Sign in to Google Drive in the browser and save a refresh token for the
drive store backend.

The OAuth client must be a desktop app client. Its ID and secret are read
from drive.client_id and drive.client_secret unless given as flags, and
are saved together with the refresh token.`,
	Args: cobra.NoArgs,
	RunE: runDriveLogin,
}

// Swapped in tests.
var (
	openBrowser       = oauth.OpenBrowser
	driveOAuthConfig  = drivenoauth.DriveConfig
	driveLoginTimeout = 5 * time.Minute
)

func init() {
	settingsDriveLoginCmd.Flags().String("client-id", "", "OAuth client ID")
	settingsDriveLoginCmd.Flags().String("client-secret", "", "OAuth client secret")
	settingsDriveLoginCmd.Flags().Bool("no-browser", false, "print the sign-in URL without opening a browser")
	settingsCmd.AddCommand(settingsDriveLoginCmd)
}

func runDriveLogin(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	clientID, _ := cmd.Flags().GetString("client-id")
	clientSecret, _ := cmd.Flags().GetString("client-secret")
	noBrowser, _ := cmd.Flags().GetBool("no-browser")
	if clientID == "" {
		clientID = current.Drive.ClientID
	}
	if clientSecret == "" {
		clientSecret = current.Drive.ClientSecret
	}
	if clientID == "" {
		return fmt.Errorf("%w: --client-id or drive.client_id is required", domain.ErrInvalidInput)
	}

	state := uuid.NewString()
	server := oauth.NewCallbackServer(0, state)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting callback server: %w", err)
	}
	defer server.Stop() //nolint:errcheck

	cfg := driveOAuthConfig(clientID, clientSecret, server.RedirectURI())
	verifier := oauth2.GenerateVerifier()
	authURL := drivenoauth.AuthCodeURL(cfg, state, verifier)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Open this URL to sign in to Google Drive:")
	fmt.Fprintln(out, authURL)
	fmt.Fprintln(out)
	if !noBrowser {
		if err := openBrowser(authURL); err != nil {
			logger.Warn("Could not open a browser: %v", err)
		}
	}
	fmt.Fprintln(out, "Waiting for the browser to finish...")

	ctx, cancel := context.WithTimeout(cmd.Context(), driveLoginTimeout)
	defer cancel()

	code, err := server.WaitForCode(ctx)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	tok, err := drivenoauth.ExchangeCode(ctx, cfg, code, verifier)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	values := [][2]string{
		{"drive.client_id", clientID},
		{"drive.client_secret", clientSecret},
		{"drive.refresh_token", tok.RefreshToken},
	}
	for _, v := range values {
		if v[1] == "" {
			continue
		}
		if err := settingsService.Set(v[0], v[1]); err != nil {
			return fmt.Errorf("failed to set %s: %w", v[0], err)
		}
	}

	fmt.Fprintln(out, "Signed in to Google Drive. Refresh token saved.")
	if current.Store.Backend != domain.StoreBackendDrive {
		fmt.Fprintln(out, "Run 'arrivals settings set store.backend drive' to store history in Drive.")
	}
	return nil
}
