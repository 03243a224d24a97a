package models

// Role is the functional role a participant plays at an event.
type Role string

const (
	RoleAttendee  Role = "attendee"
	RoleAngel     Role = "angel"
	RoleSupporter Role = "supporter"
	RoleBuddy     Role = "buddy"
	RoleMentor    Role = "mentor"
	RoleManager   Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAttendee, RoleAngel, RoleSupporter, RoleBuddy, RoleMentor, RoleManager:
		return true
	}
	return false
}

// Participant is a named person attending one event.
//
// Names are unique per event case-insensitively: "Alice" and "alice" are the
// same participant within one event. A participant with zero bucket links is
// garbage and is swept by the storage layer.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// EventID is the owning event.
	EventID string

	// Name is the display name, stored as first seen.
	Name string

	// Role is the resolved functional role.
	Role Role

	// CreatedAt is the Unix timestamp when the participant was created.
	CreatedAt int64
}

// ParticipantView is a Participant annotated with settlement state for
// read projections.
type ParticipantView struct {
	Participant

	// Settled is the logical AND across the participant's bucket links,
	// or the single link's flag when the projection is scoped to a bucket.
	Settled bool

	// SettledAt is the Unix timestamp of the most recent settled link,
	// zero when unsettled. Only meaningful in bucket-scoped projections.
	SettledAt int64
}

// Entry is one raw line of bulk-ingestion input: a name plus an optional
// explicit role. A zero Role means "resolve from presets".
type Entry struct {
	Name string
	Role Role
}
