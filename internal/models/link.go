package models

// BucketLink joins a SettlementBucket and a Participant. A (bucket,
// participant) pair appears at most once.
type BucketLink struct {
	// BucketID and ParticipantID identify the link.
	BucketID      string
	ParticipantID string

	// Settled marks whether this participant has paid into this bucket.
	Settled bool

	// SettledAt is the Unix timestamp of the transition to settled,
	// zero while unsettled.
	SettledAt int64

	// CreatedAt is the Unix timestamp when the link was created.
	CreatedAt int64
}
