package sqlite

import (
	"context"
	"fmt"

	"github.com/moimlab/settleup/internal/models"
	"github.com/moimlab/settleup/internal/storage"
)

// ListEvents returns all events, newest first, with participant and bucket
// counts. The mirrored display fields come straight off the event row.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]*models.EventSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.title, e.date, e.time, e.location, e.description,
		       e.display_manager, e.display_account, e.created_at,
		       (SELECT COUNT(*) FROM participants p WHERE p.event_id = e.id),
		       (SELECT COUNT(*) FROM settlement_buckets b WHERE b.event_id = e.id)
		FROM events e
		ORDER BY e.date DESC, e.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.EventSummary
	for rows.Next() {
		ev := &models.EventSummary{}
		if err := rows.Scan(
			&ev.ID, &ev.Title, &ev.Date, &ev.Time, &ev.Location, &ev.Description,
			&ev.DisplayManager, &ev.DisplayAccount, &ev.CreatedAt,
			&ev.ParticipantCount, &ev.BucketCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// ListBuckets returns an event's buckets in primary-first order, each with
// its participant count and settled count.
func (s *SQLiteStore) ListBuckets(ctx context.Context, eventID string) ([]*models.BucketSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.event_id, b.title, b.manager, b.account, b.sort_order,
		       b.created_at, b.updated_at,
		       COUNT(l.participant_id),
		       COALESCE(SUM(l.is_settled), 0)
		FROM settlement_buckets b
		LEFT JOIN bucket_participant_links l ON l.bucket_id = b.id
		WHERE b.event_id = ?
		GROUP BY b.id
		ORDER BY b.sort_order, b.created_at, b.id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	defer rows.Close()

	var buckets []*models.BucketSummary
	for rows.Next() {
		b := &models.BucketSummary{}
		if err := rows.Scan(
			&b.ID, &b.EventID, &b.Title, &b.Manager, &b.Account, &b.SortOrder,
			&b.CreatedAt, &b.UpdatedAt,
			&b.ParticipantCount, &b.SettledCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate buckets: %w", err)
	}

	return buckets, nil
}

// ListParticipants returns the participants matching the filter. In bucket
// scope each row carries that bucket's own settled flag; in event scope the
// flag is the logical AND across all of the participant's links.
func (s *SQLiteStore) ListParticipants(ctx context.Context, filter storage.ParticipantFilter) ([]*models.ParticipantView, error) {
	var (
		query string
		args  []interface{}
	)

	if filter.BucketID != "" {
		query = `
			SELECT p.id, p.event_id, p.name, p.role, p.created_at,
			       l.is_settled, COALESCE(l.settled_at, 0)
			FROM participants p
			JOIN bucket_participant_links l ON l.participant_id = p.id
			WHERE p.event_id = ? AND l.bucket_id = ?`
		args = []interface{}{filter.EventID, filter.BucketID}
	} else {
		query = `
			SELECT p.id, p.event_id, p.name, p.role, p.created_at,
			       COALESCE(MIN(l.is_settled), 0),
			       COALESCE(MAX(l.settled_at), 0)
			FROM participants p
			LEFT JOIN bucket_participant_links l ON l.participant_id = p.id
			WHERE p.event_id = ?`
		args = []interface{}{filter.EventID}
	}

	if filter.NameContains != "" {
		query += " AND instr(lower(p.name), lower(?)) > 0"
		args = append(args, filter.NameContains)
	}
	if filter.BucketID == "" {
		query += " GROUP BY p.id"
	}
	query += " ORDER BY p.created_at, p.name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.ParticipantView
	for rows.Next() {
		p := &models.ParticipantView{}
		var role string
		if err := rows.Scan(
			&p.ID, &p.EventID, &p.Name, &role, &p.CreatedAt,
			&p.Settled, &p.SettledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Role = models.Role(role)
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}
