package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// schema contains the SQL statements to set up the database schema.
// IMPORTANT: events must be created before settlement_buckets and
// participants due to foreign key constraints.
//
// The unique index on participants(event_id, lower(name)) and the composite
// primary key on bucket_participant_links are what make the guarded inserts
// in participants.go race-safe; they are constraints, not optimizations.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    time TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    display_manager TEXT NOT NULL DEFAULT '',
    display_account TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settlement_buckets (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    title TEXT NOT NULL,
    manager TEXT NOT NULL DEFAULT '',
    account TEXT NOT NULL DEFAULT '',
    sort_order INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'attendee',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bucket_participant_links (
    bucket_id TEXT NOT NULL,
    participant_id TEXT NOT NULL,
    is_settled INTEGER NOT NULL DEFAULT 0,
    settled_at INTEGER,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (bucket_id, participant_id),
    FOREIGN KEY (bucket_id) REFERENCES settlement_buckets(id) ON DELETE CASCADE,
    FOREIGN KEY (participant_id) REFERENCES participants(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_participants_event_name ON participants(event_id, lower(name));
CREATE INDEX IF NOT EXISTS idx_buckets_event_id ON settlement_buckets(event_id);
CREATE INDEX IF NOT EXISTS idx_participants_event_id ON participants(event_id);
CREATE INDEX IF NOT EXISTS idx_links_participant_id ON bucket_participant_links(participant_id);
`

// migrate brings the schema and any pre-existing data up to date inside the
// caller's transaction. Any error aborts the whole pass.
func migrate(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Databases created before the bucket mirror existed lack the display
	// columns on events.
	for _, col := range []struct{ name, decl string }{
		{"display_manager", "TEXT NOT NULL DEFAULT ''"},
		{"display_account", "TEXT NOT NULL DEFAULT ''"},
	} {
		if err := ensureColumn(ctx, tx, "events", col.name, col.decl); err != nil {
			return err
		}
	}

	if err := migrateLegacyBuckets(ctx, tx); err != nil {
		return err
	}

	// Participants with no links anywhere are garbage regardless of where
	// they came from.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM participants
		WHERE NOT EXISTS (
			SELECT 1 FROM bucket_participant_links l
			WHERE l.participant_id = participants.id
		)`); err != nil {
		return fmt.Errorf("failed to sweep orphaned participants: %w", err)
	}

	if _, err := tx.ExecContext(ctx, mirrorAllEventsQuery); err != nil {
		return fmt.Errorf("failed to mirror primary buckets: %w", err)
	}

	return nil
}

// migrateLegacyBuckets moves single-bucket-per-event era data into the
// bucket/link model: every event without a bucket gets a default one seeded
// from its own display fields, and all of that event's participants are
// linked into it.
func migrateLegacyBuckets(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT e.id, e.display_manager, e.display_account
		FROM events e
		WHERE NOT EXISTS (
			SELECT 1 FROM settlement_buckets b WHERE b.event_id = e.id
		)`)
	if err != nil {
		return fmt.Errorf("failed to find events without buckets: %w", err)
	}
	defer rows.Close()

	type legacyEvent struct {
		id, manager, account string
	}
	var legacy []legacyEvent
	for rows.Next() {
		var e legacyEvent
		if err := rows.Scan(&e.id, &e.manager, &e.account); err != nil {
			return fmt.Errorf("failed to scan event: %w", err)
		}
		legacy = append(legacy, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate events: %w", err)
	}

	now := time.Now().Unix()
	for _, e := range legacy {
		bucketID := uuid.New().String()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settlement_buckets (id, event_id, title, manager, account, sort_order, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
			bucketID, e.id, DefaultBucketTitle, e.manager, e.account, now, now,
		); err != nil {
			return fmt.Errorf("failed to create default bucket: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bucket_participant_links (bucket_id, participant_id, is_settled, created_at)
			SELECT ?, p.id, 0, ?
			FROM participants p
			WHERE p.event_id = ?
			ON CONFLICT DO NOTHING`,
			bucketID, now, e.id,
		); err != nil {
			return fmt.Errorf("failed to link participants to default bucket: %w", err)
		}
	}

	return nil
}

// ensureColumn adds a column to a table if it is missing. SQLite has no
// ADD COLUMN IF NOT EXISTS, so presence is checked via table_info.
func ensureColumn(ctx context.Context, tx *sql.Tx, table, column, decl string) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("failed to read table info for %s: %w", table, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("failed to scan table info: %w", err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate table info: %w", err)
	}
	if found {
		return nil
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl),
	); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	return nil
}
