package models

// SettlementBucket is one "pot" within an event that aggregates a subset of
// participants for payment tracking (e.g. "1st round", "2nd round").
//
// Every event has at least one bucket at all times. The bucket with the
// lowest sort order (ties broken by creation time, then ID) is the primary
// bucket; its manager/account values are mirrored onto the owning Event.
type SettlementBucket struct {
	// ID is the unique identifier for the bucket (UUID format).
	ID string

	// EventID is the owning event.
	EventID string

	// Title is the display name of the bucket.
	Title string

	// Manager is the name of the person collecting payments. Optional.
	Manager string

	// Account is the bank-account string payments go to. Optional.
	Account string

	// SortOrder defines which bucket is primary (lowest wins).
	SortOrder int

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// BucketSummary is a SettlementBucket annotated with per-bucket counts.
type BucketSummary struct {
	SettlementBucket

	// ParticipantCount is the number of participants linked to the bucket.
	ParticipantCount int

	// SettledCount is how many of those links are marked settled.
	SettledCount int
}
