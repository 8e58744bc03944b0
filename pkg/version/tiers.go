package version

import (
	"fmt"
	"strings"
)

// Tier represents the editorial stage of a paper attachment
type Tier string

const (
	// Unversioned attachments carry no recognizable stage in their title
	Unversioned Tier = "unversioned"

	// Manuscript stages, from earliest to latest
	Preprint  Tier = "preprint"  // submitted, not yet peer reviewed
	Accepted  Tier = "accepted"  // peer reviewed, not yet typeset
	Published Tier = "published" // version of record
)

// All lists every tier from least to most authoritative.
var All = []Tier{Unversioned, Preprint, Accepted, Published}

// Versioned reports whether the tier marks a recognized manuscript stage.
func (t Tier) Versioned() bool {
	return t != Unversioned && t != ""
}

// Label returns the human-readable title prefix used when stamping
// attachment titles.
func (t Tier) Label() string {
	switch t {
	case Published:
		return "Published Version"
	case Accepted:
		return "Accepted Version"
	case Preprint:
		return "Preprint"
	default:
		return "Full Text PDF"
	}
}

// ParseTier converts a string (as found in rules files or CLI flags)
// into a Tier.
func ParseTier(s string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case Unversioned:
		return Unversioned, nil
	case Preprint:
		return Preprint, nil
	case Accepted:
		return Accepted, nil
	case Published:
		return Published, nil
	default:
		return Unversioned, fmt.Errorf("unknown version tier: %q", s)
	}
}
