// Package cache persists the last known accounts and emails to a local
// SQLite database so the UI has something to show before the first
// backend round trip. The store remains the source of truth; the cache
// is replaced wholesale after every successful load.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/maildeck/internal/model"
)

// SQLiteCache implements the offline cache using a local SQLite database.
type SQLiteCache struct {
	db *sqlx.DB
}

// NewSQLiteCache opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *SQLiteCache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveAccounts replaces the cached account list.
func (c *SQLiteCache) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM accounts"); err != nil {
		return fmt.Errorf("clearing cached accounts: %w", err)
	}

	const query = `
		INSERT INTO accounts (
			id, name, email,
			imap_host, imap_port, imap_secure,
			auth_method, auth_username,
			sync_config, connection_status, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	for _, a := range accounts {
		syncJSON, err := json.Marshal(a.Sync)
		if err != nil {
			return fmt.Errorf("encoding sync config for %s: %w", a.ID, err)
		}

		_, err = tx.ExecContext(ctx, query,
			a.ID, a.Name, a.Email,
			a.IMAP.Host, a.IMAP.Port, a.IMAP.Secure,
			string(a.Auth.Method), a.Auth.Username,
			string(syncJSON), string(a.ConnectionStatus), now,
		)
		if err != nil {
			return fmt.Errorf("caching account %s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAccounts returns the cached account list.
func (c *SQLiteCache) LoadAccounts(ctx context.Context) ([]model.Account, error) {
	type row struct {
		ID               string `db:"id"`
		Name             string `db:"name"`
		Email            string `db:"email"`
		IMAPHost         string `db:"imap_host"`
		IMAPPort         int    `db:"imap_port"`
		IMAPSecure       bool   `db:"imap_secure"`
		AuthMethod       string `db:"auth_method"`
		AuthUsername     string `db:"auth_username"`
		SyncConfig       string `db:"sync_config"`
		ConnectionStatus string `db:"connection_status"`
	}

	var rows []row
	err := c.db.SelectContext(ctx, &rows, `
		SELECT id, name, email,
		       imap_host, imap_port, imap_secure,
		       auth_method, auth_username,
		       sync_config, connection_status
		FROM accounts ORDER BY name, email`)
	if err != nil {
		return nil, fmt.Errorf("loading cached accounts: %w", err)
	}

	accounts := make([]model.Account, 0, len(rows))
	for _, r := range rows {
		var syncCfg model.SyncConfig
		if err := json.Unmarshal([]byte(r.SyncConfig), &syncCfg); err != nil {
			// Corrupt row; skip rather than fail the whole hydrate.
			continue
		}

		accounts = append(accounts, model.Account{
			ID:    r.ID,
			Name:  r.Name,
			Email: r.Email,
			IMAP: model.IMAPConfig{
				Host:   r.IMAPHost,
				Port:   r.IMAPPort,
				Secure: r.IMAPSecure,
			},
			Auth: model.AuthConfig{
				Method:   model.AuthMethod(r.AuthMethod),
				Username: r.AuthUsername,
			},
			Sync:             syncCfg,
			ConnectionStatus: model.ConnectionStatus(r.ConnectionStatus),
		})
	}

	return accounts, nil
}

// SaveEmails replaces the cached email page.
func (c *SQLiteCache) SaveEmails(ctx context.Context, emails []model.Email) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM emails"); err != nil {
		return fmt.Errorf("clearing cached emails: %w", err)
	}

	const query = `
		INSERT INTO emails (
			id, account_id, folder, sender, subject, date,
			seen, flagged, answered, deleted, draft,
			snippet, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	for _, e := range emails {
		_, err = tx.ExecContext(ctx, query,
			e.ID, e.AccountID, e.Folder, e.From, e.Subject, e.Date.UTC(),
			e.Flags.Seen, e.Flags.Flagged, e.Flags.Answered,
			e.Flags.Deleted, e.Flags.Draft,
			e.Snippet, now,
		)
		if err != nil {
			return fmt.Errorf("caching email %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// LoadEmails returns up to limit cached emails, newest first.
func (c *SQLiteCache) LoadEmails(ctx context.Context, limit int) ([]model.Email, error) {
	if limit <= 0 {
		limit = model.DefaultPageSize
	}

	type row struct {
		ID        string    `db:"id"`
		AccountID string    `db:"account_id"`
		Folder    string    `db:"folder"`
		Sender    string    `db:"sender"`
		Subject   string    `db:"subject"`
		Date      time.Time `db:"date"`
		Seen      bool      `db:"seen"`
		Flagged   bool      `db:"flagged"`
		Answered  bool      `db:"answered"`
		Deleted   bool      `db:"deleted"`
		Draft     bool      `db:"draft"`
		Snippet   string    `db:"snippet"`
	}

	var rows []row
	err := c.db.SelectContext(ctx, &rows, `
		SELECT id, account_id, folder, sender, subject, date,
		       seen, flagged, answered, deleted, draft, snippet
		FROM emails ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("loading cached emails: %w", err)
	}

	emails := make([]model.Email, 0, len(rows))
	for _, r := range rows {
		emails = append(emails, model.Email{
			ID:        r.ID,
			AccountID: r.AccountID,
			Folder:    r.Folder,
			From:      r.Sender,
			Subject:   r.Subject,
			Date:      r.Date,
			Flags: model.EmailFlags{
				Seen:     r.Seen,
				Flagged:  r.Flagged,
				Answered: r.Answered,
				Deleted:  r.Deleted,
				Draft:    r.Draft,
			},
			Snippet: r.Snippet,
		})
	}

	return emails, nil
}
