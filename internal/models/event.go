package models

// Event represents one scheduled gathering.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// Title is the display name of the event.
	Title string

	// Date is the event date in YYYY-MM-DD form.
	Date string

	// Time is the start time in HH:MM form. Optional.
	Time string

	// Location is where the event takes place.
	Location string

	// Description is free text. Optional.
	Description string

	// DisplayManager mirrors the primary bucket's manager name.
	// Maintained by the storage layer; do not set directly.
	DisplayManager string

	// DisplayAccount mirrors the primary bucket's account string.
	// Maintained by the storage layer; do not set directly.
	DisplayAccount string

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64
}

// EventSummary is an Event annotated with aggregate counts for listing.
type EventSummary struct {
	Event

	// ParticipantCount is the number of participants in the event.
	ParticipantCount int

	// BucketCount is the number of settlement buckets in the event.
	BucketCount int
}
