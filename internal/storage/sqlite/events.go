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

// CreateEvent inserts the event row and, in the same transaction, its first
// settlement bucket seeded with the supplied manager/account.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event, manager, account string) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}
	event.DisplayManager = manager
	event.DisplayAccount = account

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, title, date, time, location, description, display_manager, display_account, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Title, event.Date, event.Time, event.Location,
		event.Description, manager, account, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO settlement_buckets (id, event_id, title, manager, account, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		uuid.New().String(), event.ID, DefaultBucketTitle, manager, account, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert default bucket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetEvent retrieves an event by ID.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event := &models.Event{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, date, time, location, description, display_manager, display_account, created_at
		FROM events WHERE id = ?`,
		eventID,
	).Scan(&event.ID, &event.Title, &event.Date, &event.Time, &event.Location,
		&event.Description, &event.DisplayManager, &event.DisplayAccount, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event. Buckets, participants and links go with it
// via the foreign key cascades.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", eventID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrEventNotFound
	}
	return nil
}
