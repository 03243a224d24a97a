package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moimlab/settleup/internal/models"
	"github.com/moimlab/settleup/internal/storage"
)

// AddParticipants merges a batch of entries into the event inside one
// transaction. Each entry either creates a participant or reuses the one
// with the same case-insensitive name, then links it into the target bucket.
// The returned count is the number of links actually created: re-submitting
// a name already in the target bucket contributes 0 even though the name was
// accepted.
//
// Both inserts are guarded by constraints rather than read-then-write
// checks: the unique index on (event_id, lower(name)) and the composite link
// primary key make concurrent ingestion for the same event safe.
func (s *SQLiteStore) AddParticipants(ctx context.Context, eventID string, entries []models.Entry, targetBucketID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bucketID, err := resolveTargetBucket(ctx, tx, eventID, targetBucketID)
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	inserted := 0
	for _, entry := range entries {
		participantID, err := upsertParticipant(ctx, tx, eventID, entry, now)
		if err != nil {
			return 0, err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO bucket_participant_links (bucket_id, participant_id, is_settled, created_at)
			VALUES (?, ?, 0, ?)
			ON CONFLICT DO NOTHING`,
			bucketID, participantID, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert link: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, nil
}

// upsertParticipant inserts the participant if no row with the same
// case-insensitive name exists in the event, otherwise returns the existing
// row's ID. An existing default-role participant is upgraded when the
// incoming entry carries a non-default role; a non-default stored role is
// never replaced.
func upsertParticipant(ctx context.Context, tx *sql.Tx, eventID string, entry models.Entry, now int64) (string, error) {
	newID := uuid.New().String()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO participants (id, event_id, name, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		newID, eventID, entry.Name, string(entry.Role), now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return newID, nil
	}

	var (
		existingID   string
		existingRole string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, role FROM participants
		WHERE event_id = ? AND lower(name) = lower(?)`,
		eventID, entry.Name,
	).Scan(&existingID, &existingRole)
	if err != nil {
		return "", fmt.Errorf("failed to look up existing participant: %w", err)
	}

	if models.Role(existingRole) == models.RoleAttendee && entry.Role != models.RoleAttendee {
		if _, err := tx.ExecContext(ctx,
			"UPDATE participants SET role = ? WHERE id = ?",
			string(entry.Role), existingID,
		); err != nil {
			return "", fmt.Errorf("failed to upgrade participant role: %w", err)
		}
	}

	return existingID, nil
}

// RemoveFromBucket deletes one (bucket, participant) link and sweeps the
// participant if it has no links left anywhere in the event.
func (s *SQLiteStore) RemoveFromBucket(ctx context.Context, eventID, bucketID, participantID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM bucket_participant_links
		WHERE bucket_id = ? AND participant_id = ?
		AND bucket_id IN (SELECT id FROM settlement_buckets WHERE event_id = ?)`,
		bucketID, participantID, eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrParticipantNotFound
	}

	if err := sweepOrphans(ctx, tx, eventID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetSettled updates the settled flag on one link, or on every link of the
// participant within the event when bucketID is empty. The transition to
// settled stamps settled_at; the transition back clears it. A bucketID that
// matches no link is a silent no-op.
func (s *SQLiteStore) SetSettled(ctx context.Context, eventID, participantID, bucketID string, settled bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM participants WHERE id = ? AND event_id = ?",
		participantID, eventID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return storage.ErrParticipantNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check participant existence: %w", err)
	}

	var settledAt interface{}
	if settled {
		settledAt = time.Now().Unix()
	}

	if bucketID != "" {
		_, err = tx.ExecContext(ctx, `
			UPDATE bucket_participant_links
			SET is_settled = ?, settled_at = ?
			WHERE bucket_id = ? AND participant_id = ?`,
			settled, settledAt, bucketID, participantID,
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE bucket_participant_links
			SET is_settled = ?, settled_at = ?
			WHERE participant_id = ?
			AND bucket_id IN (SELECT id FROM settlement_buckets WHERE event_id = ?)`,
			settled, settledAt, participantID, eventID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update settled flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
