package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"atlashq/meridian/pkg/audit"
	"atlashq/meridian/pkg/policy"
)

// timeLayout is the storage format for timestamps.
const timeLayout = time.RFC3339Nano

// SQLiteConfig configures the SQLite store backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig(path string) SQLiteConfig {
	return SQLiteConfig{
		Path:         path,
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 10,
	}
}

// SQLiteStore is the durable Store implementation for single-instance
// deployments. Write operations additionally serialize on a process-level
// mutex so the read-modify-write sequences (id allocation, eager
// supersession) stay atomic without relying on database-level locking
// granularity.
type SQLiteStore struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger

	// writeMu serializes CreateDraft and ActivateVersion.
	writeMu sync.Mutex

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewSQLiteStore opens (creating if necessary) the database at the
// configured path and initializes the schema.
func NewSQLiteStore(cfg SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "policy.store.sqlite")

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	s := &SQLiteStore{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite policy store initialized", "path", cfg.Path)
	return s, nil
}

// initialize creates the schema and records the schema version.
func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	err := s.db.QueryRow(getSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", schemaVersion, version)
	}
	return nil
}

// ListVersions returns all version records, newest CreatedAt first.
func (s *SQLiteStore) ListVersions(ctx context.Context) ([]*VersionRecord, error) {
	records, err := s.loadVersions(ctx)
	if err != nil {
		return nil, err
	}
	sortVersionsNewestFirst(records)
	return records, nil
}

// ListAuditEvents returns all audit events, newest At first.
func (s *SQLiteStore) ListAuditEvents(ctx context.Context) ([]*audit.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, actor_name, action, version_id, note FROM policy_audit_events`)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []*audit.Event
	for rows.Next() {
		var ev audit.Event
		var at string
		var note sql.NullString
		if err := rows.Scan(&ev.ID, &at, &ev.ActorName, &ev.Action, &ev.VersionID, &note); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.At, err = time.Parse(timeLayout, at)
		if err != nil {
			return nil, fmt.Errorf("failed to parse audit timestamp %q: %w", at, err)
		}
		ev.Note = note.String
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.After(events[j].At)
	})
	return events, nil
}

// GetVersion returns the record with the given id, or found=false.
func (s *SQLiteStore) GetVersion(ctx context.Context, versionID string) (*VersionRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT version_id, status, created_at, created_by, effective_from,
		        activated_at, activated_by, note, config
		   FROM policy_versions WHERE version_id = ?`, versionID)

	rec, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// GetActiveVersionAt resolves the configuration in force at the instant.
func (s *SQLiteStore) GetActiveVersionAt(ctx context.Context, at time.Time) (*VersionRecord, error) {
	records, err := s.loadVersions(ctx)
	if err != nil {
		return nil, err
	}

	rec := resolveActiveAt(records, at)
	if rec == nil {
		return baselineRecord(), nil
	}
	return rec, nil
}

// CreateDraft validates the config, allocates the next version id, inserts
// a draft row, and appends a create_draft audit event in one transaction.
func (s *SQLiteStore) CreateDraft(ctx context.Context, actorName string, cfg policy.Config, note string) (*VersionRecord, error) {
	if err := validateActor(actorName); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT version_id FROM policy_versions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query version ids: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan version id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate version ids: %w", err)
	}
	rows.Close()

	now := s.now()
	rec := &VersionRecord{
		VersionID:     nextVersionID(ids),
		Status:        StatusDraft,
		CreatedAt:     now,
		CreatedBy:     actorName,
		EffectiveFrom: now,
		Note:          note,
		Config:        cfg.Clone(),
	}

	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO policy_versions
		   (version_id, status, created_at, created_by, effective_from, activated_at, activated_by, note, config)
		 VALUES (?, ?, ?, ?, ?, NULL, NULL, ?, ?)`,
		rec.VersionID, string(rec.Status), rec.CreatedAt.UTC().Format(timeLayout),
		rec.CreatedBy, rec.EffectiveFrom.UTC().Format(timeLayout), nullable(note), string(configJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to insert version: %w", err)
	}

	if err := insertAuditEvent(ctx, tx, now, actorName, audit.ActionCreateDraft, rec.VersionID, note); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit draft: %w", err)
	}

	s.logger.Info("policy draft created",
		"version_id", rec.VersionID,
		"actor", actorName,
	)
	return rec, nil
}

// ActivateVersion transitions a version to active or scheduled with the
// same supersession semantics as the memory backend, inside one
// transaction.
func (s *SQLiteStore) ActivateVersion(ctx context.Context, versionID, actorName string, effectiveFrom *time.Time, note string) (*VersionRecord, error) {
	if err := validateActor(actorName); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT version_id, status, created_at, created_by, effective_from,
		        activated_at, activated_by, note, config
		   FROM policy_versions WHERE version_id = ?`, versionID)
	target, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{VersionID: versionID}
	}
	if err != nil {
		return nil, err
	}
	if target.Status == StatusRetired {
		return nil, &ValidationError{
			Field:   "versionId",
			Message: fmt.Sprintf("version %s is retired; create a new draft instead", versionID),
		}
	}

	now := s.now()
	effective := now
	if effectiveFrom != nil {
		effective = *effectiveFrom
	}

	newStatus := StatusActive
	if effective.After(now) {
		newStatus = StatusScheduled
	} else {
		// Eager supersession: retire every other active record and every
		// other scheduled record whose effective instant has been overtaken.
		if err := retireSupersededTx(ctx, tx, versionID, effective); err != nil {
			return nil, err
		}
	}

	target.Status = newStatus
	target.EffectiveFrom = effective
	activatedAt := now
	target.ActivatedAt = &activatedAt
	target.ActivatedBy = actorName
	if note != "" {
		target.Note = note
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE policy_versions
		    SET status = ?, effective_from = ?, activated_at = ?, activated_by = ?, note = ?
		  WHERE version_id = ?`,
		string(target.Status), effective.UTC().Format(timeLayout),
		now.UTC().Format(timeLayout), actorName, nullable(target.Note), versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update version: %w", err)
	}

	if err := insertAuditEvent(ctx, tx, now, actorName, audit.ActionActivatePolicy, versionID,
		activationNote(note, effective)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit activation: %w", err)
	}

	s.logger.Info("policy version activated",
		"version_id", versionID,
		"status", string(target.Status),
		"effective_from", effective,
		"actor", actorName,
	)
	return target, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// retireSupersededTx applies eager supersession for an immediate activation
// inside the transaction: every other active record retires, as does every
// other scheduled record whose own effective instant does not postdate the
// new one. effective_from is stored as RFC3339Nano text, which does not
// order like instants once fractional-second precision varies, so scheduled
// records are compared on parsed times rather than in SQL.
func retireSupersededTx(ctx context.Context, tx *sql.Tx, targetID string, effective time.Time) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT version_id, status, effective_from FROM policy_versions
		  WHERE version_id != ? AND status IN (?, ?)`,
		targetID, string(StatusActive), string(StatusScheduled))
	if err != nil {
		return fmt.Errorf("failed to query supersession candidates: %w", err)
	}

	var retire []string
	for rows.Next() {
		var id, status, effectiveFrom string
		if err := rows.Scan(&id, &status, &effectiveFrom); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan supersession candidate: %w", err)
		}
		if Status(status) == StatusActive {
			retire = append(retire, id)
			continue
		}
		eff, err := time.Parse(timeLayout, effectiveFrom)
		if err != nil {
			rows.Close()
			return fmt.Errorf("failed to parse effective_from %q: %w", effectiveFrom, err)
		}
		if !eff.After(effective) {
			retire = append(retire, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate supersession candidates: %w", err)
	}
	rows.Close()

	for _, id := range retire {
		if _, err := tx.ExecContext(ctx,
			`UPDATE policy_versions SET status = ? WHERE version_id = ?`,
			string(StatusRetired), id); err != nil {
			return fmt.Errorf("failed to retire version %s: %w", id, err)
		}
	}
	return nil
}

// loadVersions reads every version row.
func (s *SQLiteStore) loadVersions(ctx context.Context) ([]*VersionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version_id, status, created_at, created_by, effective_from,
		        activated_at, activated_by, note, config
		   FROM policy_versions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var records []*VersionRecord
	for rows.Next() {
		rec, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}
	return records, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanVersion scans one version row into a record.
func scanVersion(row rowScanner) (*VersionRecord, error) {
	var rec VersionRecord
	var status, createdAt, effectiveFrom, configJSON string
	var activatedAt, activatedBy, note sql.NullString

	err := row.Scan(&rec.VersionID, &status, &createdAt, &rec.CreatedBy,
		&effectiveFrom, &activatedAt, &activatedBy, &note, &configJSON)
	if err != nil {
		return nil, err
	}

	rec.Status = Status(status)
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	if rec.EffectiveFrom, err = time.Parse(timeLayout, effectiveFrom); err != nil {
		return nil, fmt.Errorf("failed to parse effective_from %q: %w", effectiveFrom, err)
	}
	if activatedAt.Valid {
		at, err := time.Parse(timeLayout, activatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse activated_at %q: %w", activatedAt.String, err)
		}
		rec.ActivatedAt = &at
	}
	rec.ActivatedBy = activatedBy.String
	rec.Note = note.String

	if err := json.Unmarshal([]byte(configJSON), &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config for %s: %w", rec.VersionID, err)
	}
	return &rec, nil
}

// insertAuditEvent appends one audit event inside the transaction.
func insertAuditEvent(ctx context.Context, tx *sql.Tx, at time.Time, actor string, action audit.Action, versionID, note string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO policy_audit_events (id, at, actor_name, action, version_id, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), at.UTC().Format(timeLayout), actor, string(action), versionID, nullable(note))
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
