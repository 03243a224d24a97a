// Package roles resolves a raw participant name to a functional role using
// layered name-matching presets. It is pure: no I/O, no storage access.
package roles

import (
	"regexp"
	"strings"

	"github.com/moimlab/settleup/internal/models"
)

// Presets holds the per-role name lists loaded from the roster directory.
// The caller owns loading; this package only matches against what it is given.
type Presets struct {
	Mentors    []string
	Managers   []string
	Angels     []string
	Supporters []string
	Buddies    []string
}

// Empty reports whether no preset list has any entries.
func (p Presets) Empty() bool {
	return len(p.Mentors) == 0 && len(p.Managers) == 0 && len(p.Angels) == 0 &&
		len(p.Supporters) == 0 && len(p.Buddies) == 0
}

// DefaultPresets returns the built-in fallback roster used before any roster
// file is configured. It matches the bare role words (English and Korean), so
// a line entered literally as its role still resolves before presets exist.
func DefaultPresets() Presets {
	return Presets{
		Mentors:    []string{"mentor", "멘토"},
		Managers:   []string{"manager", "운영진", "매니저"},
		Angels:     []string{"angel", "엔젤"},
		Supporters: []string{"supporter", "서포터"},
		Buddies:    []string{"buddy", "버디"},
	}
}

// Resolver maps names to roles. Construct with NewResolver; the zero value
// resolves everything to attendee.
type Resolver struct {
	mentors    map[string]struct{}
	managers   map[string]struct{}
	angels     map[string]struct{}
	supporters map[string]struct{}
	buddies    map[string]struct{}
}

// NewResolver builds a Resolver from the given presets. The presets are used
// exactly as supplied; callers wanting the built-in fallback pass
// DefaultPresets() explicitly.
func NewResolver(p Presets) *Resolver {
	return &Resolver{
		mentors:    toSet(p.Mentors),
		managers:   toSet(p.Managers),
		angels:     toSet(p.Angels),
		supporters: toSet(p.Supporters),
		buddies:    toSet(p.Buddies),
	}
}

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)|（[^）]*）`)
	teamToken     = regexp.MustCompile(`(?i)^(?:team\s*\d+|\d+\s*(?:team|팀|조))\s*`)
)

// Normalize prepares a raw name for comparison: parenthetical annotations and
// leading team-number tokens are stripped, whitespace is collapsed, and the
// result is lower-cased.
func Normalize(name string) string {
	s := parenthetical.ReplaceAllString(name, " ")
	s = strings.TrimSpace(s)
	s = teamToken.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.ToLower(s)
}

// Resolve maps a raw name to its role. Precedence is fixed: mentor, then
// manager, then angel, then supporter, then buddy; anything unmatched is an
// attendee. Operational roles outrank structural ones, which outrank
// auxiliary ones; there is no fallthrough once a set matches.
func (r *Resolver) Resolve(name string) models.Role {
	key := Normalize(name)
	if key == "" {
		return models.RoleAttendee
	}
	if _, ok := r.mentors[key]; ok {
		return models.RoleMentor
	}
	if _, ok := r.managers[key]; ok {
		return models.RoleManager
	}
	if _, ok := r.angels[key]; ok {
		return models.RoleAngel
	}
	if _, ok := r.supporters[key]; ok {
		return models.RoleSupporter
	}
	if _, ok := r.buddies[key]; ok {
		return models.RoleBuddy
	}
	return models.RoleAttendee
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if key := Normalize(n); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
