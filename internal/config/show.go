package config

import (
	"fmt"
	"io"
)

// RenderEffective writes the resolved configuration as annotated TOML-style
// text. Client secrets are never rendered.
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	if r.Path != "" {
		ew.printf("# Effective configuration from %s\n\n", r.Path)
	} else {
		ew.printf("# Effective configuration (no config file, defaults only)\n\n")
	}

	if r.Account != "" {
		ew.printf("# account = %q (from environment or --account)\n\n", r.Account)
	}

	ew.printf("[transfer]\n")
	ew.printf("  delay_between_transfers  = %q\n", r.Delay.String())
	ew.printf("  continue_on_error        = %t\n", r.ContinueOnError)
	ew.printf("  send_notification_email  = %t\n", r.Notify)

	if r.ClientID != "" {
		ew.printf("\n[auth]\n")
		ew.printf("  client_id      = %q\n", r.ClientID)
		ew.printf("  client_secret  = (redacted)\n")
	}

	ew.printf("\n[logging]\n")
	ew.printf("  log_level = %q\n", r.LogLevel)

	ew.printf("\n[history]\n")
	ew.printf("  enabled  = %t\n", r.HistoryEnabled)
	ew.printf("  db_path  = %q\n", r.HistoryDBPath)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
