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

// DefaultBucketTitle is the title given to auto-created buckets: the one
// created alongside a new event, and the self-healing fallback bucket.
const DefaultBucketTitle = "1차 정산"

// The primary bucket is the one with the lowest sort order, ties broken by
// creation time, then ID. Its manager/account are mirrored onto the event.
const primaryBucketQuery = `
	SELECT id FROM settlement_buckets
	WHERE event_id = ?
	ORDER BY sort_order, created_at, id
	LIMIT 1`

// mirrorAllEventsQuery refreshes the mirrored display fields on every event
// at once. Events without buckets keep their current values.
const mirrorAllEventsQuery = `
	UPDATE events SET
		display_manager = COALESCE((
			SELECT b.manager FROM settlement_buckets b
			WHERE b.event_id = events.id
			ORDER BY b.sort_order, b.created_at, b.id LIMIT 1
		), display_manager),
		display_account = COALESCE((
			SELECT b.account FROM settlement_buckets b
			WHERE b.event_id = events.id
			ORDER BY b.sort_order, b.created_at, b.id LIMIT 1
		), display_account)`

// CreateBucket appends a bucket with the next sort order. A bucket that
// lands at sort order 0 also mirrors its manager/account onto the event.
func (s *SQLiteStore) CreateBucket(ctx context.Context, bucket *models.SettlementBucket) error {
	if bucket.ID == "" {
		bucket.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	bucket.CreatedAt = now
	bucket.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id = ?", bucket.EventID).Scan(&exists)
	if err == sql.ErrNoRows {
		return storage.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check event existence: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM settlement_buckets WHERE event_id = ?`,
		bucket.EventID,
	).Scan(&bucket.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to compute sort order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO settlement_buckets (id, event_id, title, manager, account, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		bucket.ID, bucket.EventID, bucket.Title, bucket.Manager, bucket.Account,
		bucket.SortOrder, bucket.CreatedAt, bucket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bucket: %w", err)
	}

	if bucket.SortOrder == 0 {
		if err := mirrorPrimary(ctx, tx, bucket.EventID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateBucket updates title/manager/account scoped to (ID, EventID). A scope
// mismatch affects zero rows and is a silent no-op. When the updated bucket
// is currently primary, the event's mirrored fields are refreshed.
func (s *SQLiteStore) UpdateBucket(ctx context.Context, bucket *models.SettlementBucket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE settlement_buckets
		SET title = ?, manager = ?, account = ?, updated_at = ?
		WHERE id = ? AND event_id = ?`,
		bucket.Title, bucket.Manager, bucket.Account, time.Now().Unix(),
		bucket.ID, bucket.EventID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bucket: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil
	}

	primaryID, err := primaryBucketID(ctx, tx, bucket.EventID)
	if err != nil {
		return err
	}
	if primaryID == bucket.ID {
		if err := mirrorPrimary(ctx, tx, bucket.EventID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteBucket removes a bucket and its links, sweeps participants left
// without any links in the event, re-derives the primary bucket and mirrors
// it onto the event. Deleting the event's only bucket fails with
// storage.ErrLastBucket.
func (s *SQLiteStore) DeleteBucket(ctx context.Context, bucketID, eventID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM settlement_buckets WHERE id = ? AND event_id = ?",
		bucketID, eventID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return "", storage.ErrBucketNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to check bucket existence: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM settlement_buckets WHERE event_id = ?", eventID,
	).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("failed to count buckets: %w", err)
	}
	if count <= 1 {
		return "", storage.ErrLastBucket
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM settlement_buckets WHERE id = ?", bucketID,
	); err != nil {
		return "", fmt.Errorf("failed to delete bucket: %w", err)
	}

	if err := sweepOrphans(ctx, tx, eventID); err != nil {
		return "", err
	}

	primaryID, err := primaryBucketID(ctx, tx, eventID)
	if err != nil {
		return "", err
	}
	if err := mirrorPrimary(ctx, tx, eventID); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return primaryID, nil
}

// resolveTargetBucket picks the bucket ingestion should link into: the
// requested bucket when it belongs to the event, otherwise the primary
// bucket, otherwise a freshly created fallback default bucket seeded from
// the event's own display fields. The fallback is self-healing for
// historical data gaps, not normal control flow.
func resolveTargetBucket(ctx context.Context, tx *sql.Tx, eventID, requestedID string) (string, error) {
	if requestedID != "" {
		var id string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM settlement_buckets WHERE id = ? AND event_id = ?",
			requestedID, eventID,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("failed to check requested bucket: %w", err)
		}
	}

	primaryID, err := primaryBucketID(ctx, tx, eventID)
	if err == nil {
		return primaryID, nil
	}
	if err != storage.ErrBucketNotFound {
		return "", err
	}

	var manager, account string
	err = tx.QueryRowContext(ctx,
		"SELECT display_manager, display_account FROM events WHERE id = ?", eventID,
	).Scan(&manager, &account)
	if err == sql.ErrNoRows {
		return "", storage.ErrEventNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get event for fallback bucket: %w", err)
	}

	fallbackID := uuid.New().String()
	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settlement_buckets (id, event_id, title, manager, account, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		fallbackID, eventID, DefaultBucketTitle, manager, account, now, now,
	); err != nil {
		return "", fmt.Errorf("failed to create fallback bucket: %w", err)
	}

	return fallbackID, nil
}

// primaryBucketID returns the event's primary bucket, or
// storage.ErrBucketNotFound when the event has no buckets.
func primaryBucketID(ctx context.Context, tx *sql.Tx, eventID string) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, primaryBucketQuery, eventID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", storage.ErrBucketNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to derive primary bucket: %w", err)
	}
	return id, nil
}

// mirrorPrimary copies the primary bucket's manager/account onto the event's
// display fields.
func mirrorPrimary(ctx context.Context, tx *sql.Tx, eventID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE events SET
			display_manager = COALESCE((
				SELECT b.manager FROM settlement_buckets b
				WHERE b.event_id = events.id
				ORDER BY b.sort_order, b.created_at, b.id LIMIT 1
			), display_manager),
			display_account = COALESCE((
				SELECT b.account FROM settlement_buckets b
				WHERE b.event_id = events.id
				ORDER BY b.sort_order, b.created_at, b.id LIMIT 1
			), display_account)
		WHERE id = ?`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to mirror primary bucket: %w", err)
	}
	return nil
}

// sweepOrphans deletes participants of the event that no longer have any
// bucket links. Kept as an explicit step, not a trigger, so the invariant is
// visible and testable here.
func sweepOrphans(ctx context.Context, tx *sql.Tx, eventID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM participants
		WHERE event_id = ?
		AND NOT EXISTS (
			SELECT 1 FROM bucket_participant_links l
			WHERE l.participant_id = participants.id
		)`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to sweep orphaned participants: %w", err)
	}
	return nil
}
