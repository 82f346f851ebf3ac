package config

// Default values for configuration options. Layer 0 of the override chain,
// chosen so the tool works without any config file.
const (
	defaultDelayBetweenTransfers = "1s"
	defaultContinueOnError       = true
	defaultSendNotification      = false
	defaultLogLevel              = "info"
	defaultHistoryEnabled        = true
)

// DefaultConfig returns a Config populated with all default values.
// Used both as the starting point for TOML decoding (so unset fields retain
// defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Transfer: TransferConfig{
			DelayBetweenTransfers: defaultDelayBetweenTransfers,
			ContinueOnError:       defaultContinueOnError,
			SendNotificationEmail: defaultSendNotification,
		},
		Logging: LoggingConfig{
			LogLevel: defaultLogLevel,
		},
		History: HistoryConfig{
			Enabled: defaultHistoryEnabled,
		},
	}
}
