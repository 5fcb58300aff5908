package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"atlashq/meridian/pkg/audit"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS audit_archive (
	id          TEXT PRIMARY KEY,
	at          TEXT NOT NULL,
	actor_name  TEXT NOT NULL,
	action      TEXT NOT NULL,
	version_id  TEXT NOT NULL,
	note        TEXT,
	archived_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_archive_at ON audit_archive(at);
CREATE INDEX IF NOT EXISTS idx_audit_archive_version ON audit_archive(version_id);
`

// SQLiteArchiver copies audit events into a standalone SQLite database,
// separate from the version store, so the archive survives store resets
// and can be handed to compliance tooling as a single file.
type SQLiteArchiver struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteArchiver opens (creating if necessary) the archive database.
func NewSQLiteArchiver(path string, logger *slog.Logger) (*SQLiteArchiver, error) {
	if path == "" {
		return nil, fmt.Errorf("archive path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audit.archive")

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}

	return &SQLiteArchiver{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Archive inserts the events into the archive, skipping ids already
// present, and returns the number of newly archived events. Re-running
// over the same events is safe.
func (a *SQLiteArchiver) Archive(ctx context.Context, events []*audit.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	archivedAt := a.now().UTC().Format(time.RFC3339Nano)
	inserted := 0
	for _, ev := range events {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO audit_archive (id, at, actor_name, action, version_id, note, archived_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.At.UTC().Format(time.RFC3339Nano), ev.ActorName,
			string(ev.Action), ev.VersionID, ev.Note, archivedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to archive event %s: %w", ev.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read archive result: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit archive: %w", err)
	}

	if inserted > 0 {
		a.logger.Info("audit events archived",
			"inserted", inserted,
			"total", len(events),
		)
	}
	return inserted, nil
}

// Count returns the number of archived events.
func (a *SQLiteArchiver) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_archive`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count archived events: %w", err)
	}
	return n, nil
}

// Close closes the archive database.
func (a *SQLiteArchiver) Close() error {
	return a.db.Close()
}
