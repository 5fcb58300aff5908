package store

// schemaVersion is the current database schema version.
const schemaVersion = 1

// schema contains the SQL statements to create the policy store schema.
// Timestamps are stored as RFC 3339 text; configs as JSON text.
const schema = `
CREATE TABLE IF NOT EXISTS policy_versions (
    version_id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    created_by TEXT NOT NULL,
    effective_from TEXT NOT NULL,
    activated_at TEXT,
    activated_by TEXT,
    note TEXT,
    config TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_audit_events (
    id TEXT PRIMARY KEY,
    at TEXT NOT NULL,
    actor_name TEXT NOT NULL,
    action TEXT NOT NULL,
    version_id TEXT NOT NULL,
    note TEXT
);

CREATE INDEX IF NOT EXISTS idx_policy_versions_status
    ON policy_versions(status);
CREATE INDEX IF NOT EXISTS idx_policy_audit_events_at
    ON policy_audit_events(at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?);`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;`
