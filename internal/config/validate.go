package config

import (
	"errors"
	"fmt"
	"time"
)

// validLogLevels are the accepted values for logging.log_level.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateTransfer(&cfg.Transfer)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	return errors.Join(errs...)
}

func validateTransfer(t *TransferConfig) []error {
	var errs []error

	d, err := time.ParseDuration(t.DelayBetweenTransfers)
	if err != nil {
		errs = append(errs, fmt.Errorf("delay_between_transfers: %w", err))
	} else if d < 0 {
		errs = append(errs, fmt.Errorf("delay_between_transfers: must be non-negative, got %q", t.DelayBetweenTransfers))
	}

	return errs
}

func validateAuth(a *AuthConfig) []error {
	// A client secret without a client ID can never work; the reverse is
	// fine because Google installed-app clients may omit the secret.
	if a.ClientSecret != "" && a.ClientID == "" {
		return []error{fmt.Errorf("auth: client_secret set without client_id")}
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	if l.LogLevel != "" && !validLogLevels[l.LogLevel] {
		return []error{fmt.Errorf("log_level: must be one of debug/info/warn/error, got %q", l.LogLevel)}
	}

	return nil
}
