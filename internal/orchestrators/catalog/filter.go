package catalog

import (
	"strings"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
)

// FilterSpec selects records. Every field is optional and set fields are ANDed.
// String matching is case-insensitive.
type FilterSpec struct {
	// NameContains is a substring of the monster name
	NameContains string
	// MinCR is the inclusive lower challenge rating bound, nil for unbounded
	MinCR *float64
	// MaxCR is the inclusive upper challenge rating bound, nil for unbounded
	MaxCR *float64
	// Type must equal the monster type
	Type string
	// Size must equal the monster size
	Size string
	// AlignmentContains is a substring of the alignment
	AlignmentContains string
}

// IsActive reports whether any field besides the name search is set
func (f FilterSpec) IsActive() bool {
	return f.MinCR != nil || f.MaxCR != nil || f.Type != "" || f.Size != "" || f.AlignmentContains != ""
}

// Matches reports whether a record satisfies every set field
func (f FilterSpec) Matches(record *monster.Record) bool {
	if record == nil {
		return false
	}

	if f.NameContains != "" && !containsFold(record.Name, f.NameContains) {
		return false
	}
	if f.MinCR != nil && record.ChallengeRating < *f.MinCR {
		return false
	}
	if f.MaxCR != nil && record.ChallengeRating > *f.MaxCR {
		return false
	}
	if f.Type != "" && !strings.EqualFold(record.Type, f.Type) {
		return false
	}
	if f.Size != "" && !strings.EqualFold(record.Size, f.Size) {
		return false
	}
	if f.AlignmentContains != "" && !containsFold(record.Alignment, f.AlignmentContains) {
		return false
	}

	return true
}

// Filter returns the records matching spec, in input order.
// The input slice is never modified.
func Filter(records []*monster.Record, spec FilterSpec) []*monster.Record {
	matched := make([]*monster.Record, 0, len(records))
	for _, record := range records {
		if spec.Matches(record) {
			matched = append(matched, record)
		}
	}
	return matched
}

// CR returns a pointer for use as a FilterSpec bound
func CR(v float64) *float64 {
	return &v
}

// containsFold reports whether substr is in s, ignoring case.
// An empty s never matches a non-empty substr.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
