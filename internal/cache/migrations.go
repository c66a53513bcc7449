package cache

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	imap_host         TEXT NOT NULL DEFAULT '',
	imap_port         INTEGER NOT NULL DEFAULT 993,
	imap_secure       INTEGER NOT NULL DEFAULT 1,
	auth_method       TEXT NOT NULL DEFAULT 'PLAIN',
	auth_username     TEXT NOT NULL DEFAULT '',
	sync_config       TEXT NOT NULL DEFAULT '{}',
	connection_status TEXT NOT NULL DEFAULT 'unknown',
	cached_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS emails (
	id         TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	folder     TEXT NOT NULL DEFAULT '',
	sender     TEXT NOT NULL DEFAULT '',
	subject    TEXT NOT NULL DEFAULT '',
	date       DATETIME NOT NULL,
	seen       INTEGER NOT NULL DEFAULT 0,
	flagged    INTEGER NOT NULL DEFAULT 0,
	answered   INTEGER NOT NULL DEFAULT 0,
	deleted    INTEGER NOT NULL DEFAULT 0,
	draft      INTEGER NOT NULL DEFAULT 0,
	snippet    TEXT NOT NULL DEFAULT '',
	cached_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_emails_account_id ON emails(account_id);
CREATE INDEX IF NOT EXISTS idx_emails_date ON emails(date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
