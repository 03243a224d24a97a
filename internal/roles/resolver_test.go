package roles

import (
	"testing"

	"github.com/moimlab/settleup/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain name", in: "Alice", want: "alice"},
		{name: "surrounding whitespace", in: "  Bob  ", want: "bob"},
		{name: "parenthetical stripped", in: "Alice (late arrival)", want: "alice"},
		{name: "fullwidth parenthetical stripped", in: "김철수（멘토）", want: "김철수"},
		{name: "leading team number", in: "3팀 박영희", want: "박영희"},
		{name: "leading team word", in: "Team 2 Carol", want: "carol"},
		{name: "inner whitespace collapsed", in: "Dan   van  Berg", want: "dan van berg"},
		{name: "everything at once", in: " 1조  Eve (vegan) ", want: "eve"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	presets := Presets{
		Mentors:    []string{"Kim Mentor", "Shared Name"},
		Managers:   []string{"Lee Manager"},
		Angels:     []string{"Park Angel", "Shared Name"},
		Supporters: []string{"Choi Supporter"},
		Buddies:    []string{"Jung Buddy"},
	}
	r := NewResolver(presets)

	tests := []struct {
		name string
		in   string
		want models.Role
	}{
		{name: "mentor match", in: "Kim Mentor", want: models.RoleMentor},
		{name: "manager match", in: "lee manager", want: models.RoleManager},
		{name: "angel match", in: "PARK ANGEL", want: models.RoleAngel},
		{name: "supporter match", in: "Choi Supporter", want: models.RoleSupporter},
		{name: "buddy match", in: "Jung Buddy", want: models.RoleBuddy},
		{name: "unknown name defaults to attendee", in: "Stranger", want: models.RoleAttendee},
		{name: "empty name defaults to attendee", in: "  ", want: models.RoleAttendee},
		{name: "annotated mentor still matches", in: "Kim Mentor (1팀)", want: models.RoleMentor},
		// Precedence: a name in both the mentor and angel sets is a mentor,
		// never an angel.
		{name: "mentor outranks angel", in: "Shared Name", want: models.RoleMentor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.in); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveEmptyPresets(t *testing.T) {
	r := NewResolver(Presets{})

	for _, name := range []string{"Alice", "alice", "Bob"} {
		if got := r.Resolve(name); got != models.RoleAttendee {
			t.Errorf("Resolve(%q) with empty presets = %q, want attendee", name, got)
		}
	}
}

func TestDefaultPresets(t *testing.T) {
	if DefaultPresets().Empty() {
		t.Fatal("DefaultPresets should not be empty")
	}

	r := NewResolver(DefaultPresets())
	if got := r.Resolve("멘토"); got != models.RoleMentor {
		t.Errorf("Resolve(멘토) = %q, want mentor", got)
	}
	if got := r.Resolve("Supporter"); got != models.RoleSupporter {
		t.Errorf("Resolve(Supporter) = %q, want supporter", got)
	}
}
