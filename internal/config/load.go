package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are treated as fatal errors with "did you
// mean?" suggestions — silently ignoring a typo in a config file leads to
// hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values. This supports the zero-config
// first-run experience: users can start without creating a config file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolved is the effective configuration after the override chain
// (defaults -> config file -> environment -> CLI flags) has been applied.
// Durations are parsed; string enums are validated.
type Resolved struct {
	// Path of the config file the values came from. Empty when running on
	// pure defaults with no config file present.
	Path string `json:"config_path,omitempty"`

	// Account is the default source account email (env or CLI; the config
	// file deliberately holds no account so tokens stay the single source
	// of truth for identities).
	Account string `json:"account,omitempty"`

	Delay           time.Duration `json:"delay_between_transfers"`
	ContinueOnError bool          `json:"continue_on_error"`
	Notify          bool          `json:"send_notification_email"`

	LogLevel string `json:"log_level"`

	ClientID string `json:"client_id,omitempty"`
	// Never rendered; JSON output redacts it too.
	ClientSecret string `json:"-"`

	HistoryEnabled bool   `json:"history_enabled"`
	HistoryDBPath  string `json:"history_db_path"`
}

// Resolve loads configuration and applies the override chain. The precedence
// order ensures CLI flags always win, matching user expectations for one-off
// overrides without editing the config file.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// Config path: CLI > env > default.
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// Validate guarantees the delay parses.
	delay, err := time.ParseDuration(cfg.Transfer.DelayBetweenTransfers)
	if err != nil {
		return nil, fmt.Errorf("delay_between_transfers: %w", err)
	}

	account := env.Account
	if cli.Account != "" {
		account = cli.Account
	}

	resolvedPath := ""
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		resolvedPath = cfgPath
	}

	dbPath := cfg.History.DBPath
	if dbPath == "" {
		dbPath = HistoryDBPath()
	}

	return &Resolved{
		Path:            resolvedPath,
		Account:         account,
		Delay:           delay,
		ContinueOnError: cfg.Transfer.ContinueOnError,
		Notify:          cfg.Transfer.SendNotificationEmail,
		LogLevel:        cfg.Logging.LogLevel,
		ClientID:        cfg.Auth.ClientID,
		ClientSecret:    cfg.Auth.ClientSecret,
		HistoryEnabled:  cfg.History.Enabled,
		HistoryDBPath:   dbPath,
	}, nil
}
