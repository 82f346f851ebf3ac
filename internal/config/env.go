package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig  = "DRIVESHIFT_CONFIG"
	EnvAccount = "DRIVESHIFT_ACCOUNT"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // DRIVESHIFT_CONFIG: override config file path
	Account    string // DRIVESHIFT_ACCOUNT: default source account email
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Account:    os.Getenv(EnvAccount),
	}
}
