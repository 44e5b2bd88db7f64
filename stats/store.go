// Package stats persists per-group usage counters and a moderation audit
// trail in a local SQLite database. The schema is the entire contract: two
// counter tables keyed by (group, day) and (user, group), plus an append-only
// action log. Creation is idempotent, so opening an existing store is a no-op
// that preserves rows.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	dayFormat  = "2006-01-02"
	timeFormat = time.RFC3339Nano
)

const schema = `
CREATE TABLE IF NOT EXISTS group_stats (
	group_id INTEGER,
	date TEXT,
	member_count INTEGER,
	messages_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (group_id, date)
);

CREATE TABLE IF NOT EXISTS user_activity (
	user_id INTEGER,
	group_id INTEGER,
	username TEXT,
	first_name TEXT,
	last_message TEXT,
	message_count INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, group_id)
);

CREATE TABLE IF NOT EXISTS mod_actions (
	id TEXT PRIMARY KEY,
	group_id INTEGER NOT NULL,
	actor_id INTEGER NOT NULL,
	target_id INTEGER,
	action TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

type Options struct {
	Path string
	// Now overrides the clock used for day boundaries and audit timestamps.
	Now func() time.Time
}

func Open(opts Options) (*Store, error) {
	path := strings.TrimSpace(opts.Path)
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Single writer: the bot handles one event at a time and SQLite handles
	// the rest with its own per-statement transactions.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Store{db: db, now: nowFn}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) today() string {
	return s.now().Format(dayFormat)
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not configured")
	}
	return nil
}
