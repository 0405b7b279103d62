// Package migrations applies the schema for the active storage driver.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLiteSchema is the full SQLite schema. Dates are stored as ISO-8601 text,
// timestamps as RFC3339 text, booleans as integers.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS meetings (
    id           TEXT PRIMARY KEY,
    meeting_date TEXT NOT NULL,
    start_time   TEXT NOT NULL DEFAULT '',
    end_time     TEXT NOT NULL DEFAULT '',
    title        TEXT NOT NULL,
    participants TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    location     TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meetings_date ON meetings(meeting_date);

CREATE TABLE IF NOT EXISTS reminders (
    id           TEXT PRIMARY KEY,
    meeting_ref  TEXT,
    recipient    TEXT NOT NULL,
    subject      TEXT NOT NULL,
    body         TEXT NOT NULL,
    scheduled_at TEXT NOT NULL,
    sent_flag    INTEGER NOT NULL DEFAULT 0,
    sent_at      TEXT,
    created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(sent_flag, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_reminders_meeting ON reminders(meeting_ref);
`

// PostgresSchema is the full PostgreSQL schema.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS meetings (
    id           UUID PRIMARY KEY,
    meeting_date DATE NOT NULL,
    start_time   TEXT NOT NULL DEFAULT '',
    end_time     TEXT NOT NULL DEFAULT '',
    title        TEXT NOT NULL,
    participants TEXT NOT NULL DEFAULT '',
    category     TEXT NOT NULL DEFAULT '',
    location     TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meetings_date ON meetings(meeting_date);

CREATE TABLE IF NOT EXISTS reminders (
    id           UUID PRIMARY KEY,
    meeting_ref  UUID,
    recipient    TEXT NOT NULL,
    subject      TEXT NOT NULL,
    body         TEXT NOT NULL,
    scheduled_at TIMESTAMPTZ NOT NULL,
    sent_flag    BOOLEAN NOT NULL DEFAULT FALSE,
    sent_at      TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders(sent_flag, scheduled_at);
CREATE INDEX IF NOT EXISTS idx_reminders_meeting ON reminders(meeting_ref);
`

// ApplySQLite applies the schema to a SQLite database.
func ApplySQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return nil
}

// ApplyPostgres applies the schema to a PostgreSQL database.
func ApplyPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return nil
}
