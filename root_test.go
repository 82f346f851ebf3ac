package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveshift/driveshift/internal/config"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their zero values. Tests must
// set globals AFTER newRootCmd() returns, or use cmd.SetArgs() + Execute()
// to let Cobra parse them.

// saveGlobals snapshots the mutable CLI globals and restores them on cleanup.
func saveGlobals(t *testing.T) {
	t.Helper()

	oldConfigPath := flagConfigPath
	oldAccount := flagAccount
	oldJSON := flagJSON
	oldVerbose := flagVerbose
	oldQuiet := flagQuiet
	oldResolved := resolvedCfg

	t.Cleanup(func() {
		flagConfigPath = oldConfigPath
		flagAccount = oldAccount
		flagJSON = oldJSON
		flagVerbose = oldVerbose
		flagQuiet = oldQuiet
		resolvedCfg = oldResolved
	})
}

// --- buildLogger tests ---

func TestBuildLogger_ConfigBaseline(t *testing.T) {
	saveGlobals(t)

	flagVerbose = false
	flagQuiet = false
	resolvedCfg = &config.Resolved{LogLevel: "info"}

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_Verbose(t *testing.T) {
	saveGlobals(t)

	flagVerbose = true
	flagQuiet = false
	resolvedCfg = &config.Resolved{LogLevel: "info"}

	logger := buildLogger()

	// --verbose wins over the config baseline.
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_Quiet(t *testing.T) {
	saveGlobals(t)

	flagVerbose = false
	flagQuiet = true
	resolvedCfg = &config.Resolved{LogLevel: "debug"}

	logger := buildLogger()

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
}

// --- loadConfig tests ---

func TestLoadConfig_FromFile(t *testing.T) {
	saveGlobals(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[transfer]
delay_between_transfers = "3s"
continue_on_error = false
`), 0o600))

	flagConfigPath = path
	flagAccount = "a@x.com"

	require.NoError(t, loadConfig())

	assert.Equal(t, 3*time.Second, resolvedCfg.Delay)
	assert.False(t, resolvedCfg.ContinueOnError)
	assert.Equal(t, "a@x.com", resolvedCfg.Account)
}

func TestLoadConfig_BadFile(t *testing.T) {
	saveGlobals(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[transfer]
dealy_between_transfers = "3s"
`), 0o600))

	flagConfigPath = path

	err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dealy_between_transfers")
}

// --- requireAccount tests ---

func TestRequireAccount(t *testing.T) {
	saveGlobals(t)

	resolvedCfg = &config.Resolved{}

	_, err := requireAccount()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--account")

	resolvedCfg.Account = "a@x.com"

	account, err := requireAccount()
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", account)
}

// --- command wiring ---

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"login", "logout", "whoami", "transfer", "check", "history", "config"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestTransferCmd_RequiresTo(t *testing.T) {
	saveGlobals(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"transfer", "FILE1"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to")
}

func TestTransferCmd_MutuallyExclusiveErrorFlags(t *testing.T) {
	saveGlobals(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"transfer", "FILE1", "--to", "b@x.com", "--continue-on-error", "--halt-on-error"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	require.Error(t, err)
}
