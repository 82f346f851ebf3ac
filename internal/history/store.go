// Package history persists a ledger of completed transfer runs in an
// embedded SQLite database. Every batch gets a UUID; every processed file
// gets one row. The ledger is append-only from the CLI's point of view.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".

	"github.com/driveshift/driveshift/internal/handoff"
)

// DefaultRecentLimit caps how many rows Recent returns when the caller
// passes a non-positive limit.
const DefaultRecentLimit = 20

// Entry is one recorded transfer attempt.
type Entry struct {
	ID          int64     `json:"id"`
	BatchID     string    `json:"batch_id"`
	FileID      string    `json:"file_id"`
	FileName    string    `json:"file_name,omitempty"`
	SourceEmail string    `json:"source_email,omitempty"`
	TargetEmail string    `json:"target_email"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the SQLite-backed transfer ledger.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewBatchID returns a fresh batch identifier.
func NewBatchID() string {
	return uuid.NewString()
}

// Open opens (creating if needed) the ledger database at dbPath and applies
// pending schema migrations. Use ":memory:" for tests.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("history: creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open sqlite: %w", err)
	}

	// Single writer; the CLI never runs concurrent batches.
	db.SetMaxOpenConns(1)

	if err := setPragmas(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("history database ready", slog.String("path", dbPath))

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// setPragmas configures SQLite for WAL mode and safety.
func setPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA foreign_keys = ON",
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("history: set pragma %q: %w", p, err)
		}
	}

	return nil
}

// RecordBatch writes one row per outcome in a single transaction. Unprocessed
// items from a halted batch produce no rows; only attempted files are
// recorded.
func (s *Store) RecordBatch(
	ctx context.Context, batchID, sourceEmail, targetEmail string, outcomes []handoff.TransferOutcome,
) error {
	if len(outcomes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin record: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transfers
			(batch_id, file_id, file_name, source_email, target_email, success, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("history: prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)

	for _, o := range outcomes {
		_, err := stmt.ExecContext(ctx,
			batchID, o.FileID, o.FileName, sourceEmail, targetEmail,
			boolToInt(o.Success), o.ErrorMessage(), now,
		)
		if err != nil {
			return fmt.Errorf("history: insert outcome for %q: %w", o.FileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit record: %w", err)
	}

	s.logger.Debug("recorded batch",
		slog.String("batch_id", batchID),
		slog.Int("rows", len(outcomes)),
	)

	return nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, file_id, file_name, source_email, target_email, success, error, created_at
			FROM transfers ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			e         Entry
			success   int
			createdAt string
		)

		err := rows.Scan(&e.ID, &e.BatchID, &e.FileID, &e.FileName,
			&e.SourceEmail, &e.TargetEmail, &success, &e.Error, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("history: scan entry: %w", err)
		}

		e.Success = success != 0

		e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse created_at %q: %w", createdAt, err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate entries: %w", err)
	}

	return entries, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
