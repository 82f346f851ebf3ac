package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driveshift/driveshift/internal/config"
	"github.com/driveshift/driveshift/internal/gdrive"
	"github.com/driveshift/driveshift/internal/tokenfile"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate a Google account via the browser",
		RunE:  runLogin,
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved authentication token",
		RunE:  runLogout,
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Display the authenticated user",
		RunE:  runWhoami,
	}
}

func runLogin(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	account, err := requireAccount()
	if err != nil {
		return err
	}

	tokenPath := config.AccountTokenPath(account)

	logger.Info("login started", "account", account)

	ts, err := gdrive.Login(ctx, tokenPath, credentials(), openBrowser, logger)
	if err != nil {
		return err
	}

	// Verify the browser session authorized the account the token file is
	// named after. A mismatch would silently act as the wrong user.
	client := gdrive.NewClient(gdrive.DefaultBaseURL, defaultHTTPClient(), ts, logger)

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("verifying authorized account: %w", err)
	}

	if !strings.EqualFold(user.EmailAddress, account) {
		if logoutErr := gdrive.Logout(tokenPath, logger); logoutErr != nil {
			logger.Warn("removing mismatched token failed", "error", logoutErr)
		}

		return fmt.Errorf("authorized as %s but --account is %s — token discarded, log in with the matching account", user.EmailAddress, account)
	}

	if err := tokenfile.MergeMeta(tokenPath, map[string]string{
		tokenfile.MetaDisplayName: user.DisplayName,
	}); err != nil {
		logger.Warn("caching display name failed", "error", err)
	}

	logger.Info("login successful", "account", account)
	statusf("Logged in as %s (%s).\n", user.DisplayName, user.EmailAddress)

	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	logger := buildLogger()

	account, err := requireAccount()
	if err != nil {
		return err
	}

	if err := gdrive.Logout(config.AccountTokenPath(account), logger); err != nil {
		return err
	}

	logger.Info("logout successful", "account", account)
	statusf("Logged out %s.\n", account)

	return nil
}

// whoamiOutput is the JSON schema for `whoami --json`.
type whoamiOutput struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

func runWhoami(_ *cobra.Command, _ []string) error {
	logger := buildLogger()
	ctx := context.Background()

	account, err := requireAccount()
	if err != nil {
		return err
	}

	client, err := newDriveClient(ctx, account, logger)
	if err != nil {
		return err
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("fetching user profile: %w", err)
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(whoamiOutput{Email: user.EmailAddress, DisplayName: user.DisplayName})
	}

	if user.DisplayName != "" {
		fmt.Printf("User:    %s\n", user.DisplayName)
	}

	fmt.Printf("Account: %s\n", user.EmailAddress)

	return nil
}

// newDriveClient builds an authenticated Drive client for the account, or a
// friendly error when the account has no saved token.
func newDriveClient(ctx context.Context, account string, logger *slog.Logger) (*gdrive.Client, error) {
	ts, err := gdrive.TokenSourceFromPath(ctx, config.AccountTokenPath(account), credentials(), logger)
	if err != nil {
		if errors.Is(err, gdrive.ErrNotLoggedIn) {
			return nil, fmt.Errorf("%s is not logged in — run 'driveshift login --account %s' first", account, account)
		}

		return nil, err
	}

	return gdrive.NewClient(gdrive.DefaultBaseURL, defaultHTTPClient(), ts, logger), nil
}

// openBrowser launches the platform's default browser at url.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
