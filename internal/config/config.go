// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for driveshift. It supports a layered
// override chain (defaults -> config file -> environment -> CLI flags).
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Transfer TransferConfig `toml:"transfer"`
	Auth     AuthConfig     `toml:"auth"`
	Logging  LoggingConfig  `toml:"logging"`
	History  HistoryConfig  `toml:"history"`
}

// TransferConfig controls batch pacing and failure behavior. The delay is a
// fixed inter-call pause to stay under Drive API per-user rate limits — it is
// not a retry backoff, which lives in the API client.
type TransferConfig struct {
	DelayBetweenTransfers string `toml:"delay_between_transfers"`
	ContinueOnError       bool   `toml:"continue_on_error"`
	SendNotificationEmail bool   `toml:"send_notification_email"`
}

// AuthConfig lets users substitute their own OAuth client registration.
// Both fields empty means the built-in driveshift client is used.
type AuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"`
}

// HistoryConfig controls the local transfer audit ledger.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings.
type CLIOverrides struct {
	ConfigPath string
	Account    string
}
