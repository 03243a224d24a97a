// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/moimlab/settleup/internal/models"
)

// Sentinel errors callers are expected to branch on. Everything else coming
// out of a Store is an opaque storage failure.
var (
	// ErrLastBucket is returned when deleting a bucket would leave its
	// event with no buckets. Every event keeps at least one bucket.
	ErrLastBucket = errors.New("at least one settlement bucket is required")

	// ErrEventNotFound is returned when the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrBucketNotFound is returned when the referenced bucket does not
	// exist within the given event.
	ErrBucketNotFound = errors.New("settlement bucket not found")

	// ErrParticipantNotFound is returned when the referenced participant
	// does not exist within the given event.
	ErrParticipantNotFound = errors.New("participant not found")
)

// ParticipantFilter scopes a participant projection. EventID is required;
// BucketID limits the projection to one bucket's links; NameContains is a
// case-insensitive substring match on the display name.
type ParticipantFilter struct {
	EventID      string
	BucketID     string
	NameContains string
}

// Store defines the storage operations of the settlement engine. Every
// mutating method runs in a single transaction: a failure partway rolls the
// whole call back, so partial batches are never observable.
//
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// EnsureSchema creates or migrates the schema. Idempotent and safe to
	// call any number of times, including concurrently; after an error the
	// schema must be treated as ready-for-retry, not ready-for-use.
	EnsureSchema(ctx context.Context) error

	// CreateEvent persists a new event together with its first settlement
	// bucket, seeded with the given manager/account. The event's ID and
	// CreatedAt fields are populated by the store.
	CreateEvent(ctx context.Context, event *models.Event, manager, account string) error

	// GetEvent retrieves an event by ID.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	// DeleteEvent removes an event and, cascading, its buckets,
	// participants and links.
	DeleteEvent(ctx context.Context, eventID string) error

	// ListEvents returns all events with aggregate counts, newest first.
	ListEvents(ctx context.Context) ([]*models.EventSummary, error)

	// CreateBucket appends a bucket to an event with the next sort order.
	// The bucket's ID, SortOrder and timestamps are populated by the store.
	CreateBucket(ctx context.Context, bucket *models.SettlementBucket) error

	// UpdateBucket updates title/manager/account scoped to the bucket's
	// (ID, EventID) pair; a mismatch is a silent no-op. If the bucket is
	// primary, the event's mirrored fields are refreshed.
	UpdateBucket(ctx context.Context, bucket *models.SettlementBucket) error

	// DeleteBucket removes a bucket, its links, and any participant left
	// with zero links in the event, then returns the ID of the remaining
	// primary bucket. Returns ErrLastBucket when the bucket is the event's
	// only one.
	DeleteBucket(ctx context.Context, bucketID, eventID string) (string, error)

	// ListBuckets returns an event's buckets in primary-first order with
	// participant and settled counts.
	ListBuckets(ctx context.Context, eventID string) ([]*models.BucketSummary, error)

	// AddParticipants merges the given entries into the event, linking each
	// into the target bucket (or the primary bucket when targetBucketID is
	// empty). Entries must arrive trimmed, deduplicated and with roles
	// resolved. Returns the number of links actually created, which is 0
	// when every name was already linked.
	AddParticipants(ctx context.Context, eventID string, entries []models.Entry, targetBucketID string) (int, error)

	// RemoveFromBucket deletes one (bucket, participant) link and sweeps
	// the participant if that was its last link.
	RemoveFromBucket(ctx context.Context, eventID, bucketID, participantID string) error

	// SetSettled flips the settled flag on one link, or on every link of
	// the participant within the event when bucketID is empty. Settling
	// stamps SettledAt; unsettling clears it.
	SetSettled(ctx context.Context, eventID, participantID, bucketID string, settled bool) error

	// ListParticipants returns the participants matching the filter, each
	// annotated with its effective settled flag.
	ListParticipants(ctx context.Context, filter ParticipantFilter) ([]*models.ParticipantView, error)

	// Close releases any resources held by the store.
	Close() error
}
