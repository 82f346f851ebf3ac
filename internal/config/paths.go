package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform identifiers.
const (
	platformLinux  = "linux"
	platformDarwin = "darwin"
)

// Application directory name used across all platforms.
const appName = "driveshift"

// Config file name.
const configFileName = "config.toml"

// History database file name.
const historyDBName = "history.db"

// DefaultConfigDir returns the platform-specific directory for config files.
// On Linux, respects XDG_CONFIG_HOME (defaults to ~/.config/driveshift).
// On macOS, uses ~/Library/Application Support/driveshift per Apple guidelines.
// Other platforms fall back to ~/.config/driveshift.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}

		return filepath.Join(home, ".config", appName)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".config", appName)
	}
}

// DefaultDataDir returns the platform-specific directory for application data
// (tokens, history database).
// On Linux, respects XDG_DATA_HOME (defaults to ~/.local/share/driveshift).
// On macOS, uses ~/Library/Application Support/driveshift (macOS convention
// collapses config and data into one directory).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}

		return filepath.Join(home, ".local", "share", appName)
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".local", "share", appName)
	}
}

// DefaultConfigPath returns the full path to the default config file.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}

// AccountTokenPath returns the token file path for the given account email.
// Returns "" if the email is empty or the data directory cannot be determined.
// The email is lowercased so the same account always maps to the same file.
func AccountTokenPath(email string) string {
	if email == "" {
		return ""
	}

	dir := DefaultDataDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, "tokens", strings.ToLower(email)+".json")
}

// HistoryDBPath returns the default path for the transfer history database.
func HistoryDBPath() string {
	dir := DefaultDataDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, historyDBName)
}
