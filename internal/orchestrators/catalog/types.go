package catalog

import (
	"time"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
)

// Status describes the lifecycle of the loaded catalog
type Status string

// Catalog statuses
const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// LoadCatalogOutput contains the monster index in canonical order
type LoadCatalogOutput struct {
	Refs []*monster.Ref
}

// ResolveAllDetailsInput contains the refs to resolve
type ResolveAllDetailsInput struct {
	Refs []*monster.Ref
}

// ResolveAllDetailsOutput contains every record that resolved
type ResolveAllDetailsOutput struct {
	Records []*monster.Record
	// Failed lists the indexes whose detail fetch failed
	Failed []string
}

// RefreshOutput contains the newly published snapshot
type RefreshOutput struct {
	Snapshot *Snapshot
}

// StatusOutput reports the catalog lifecycle state
type StatusOutput struct {
	Status    Status
	LastError error
	LoadedAt  time.Time
}

// Snapshot is an immutable view of one catalog load.
// A refresh publishes a new snapshot; readers holding an old one keep a valid view.
type Snapshot struct {
	Refs     []*monster.Ref
	Records  []*monster.Record
	LoadedAt time.Time

	records   map[string]*monster.Record
	positions map[string]int
}

// NewSnapshot indexes refs and records into an immutable snapshot
func NewSnapshot(refs []*monster.Ref, records []*monster.Record, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		Refs:      refs,
		Records:   records,
		LoadedAt:  loadedAt,
		records:   make(map[string]*monster.Record, len(records)),
		positions: make(map[string]int, len(refs)),
	}
	for _, rec := range records {
		s.records[rec.Index] = rec
	}
	for i, ref := range refs {
		if _, ok := s.positions[ref.Index]; !ok {
			s.positions[ref.Index] = i
		}
	}
	return s
}

// Record returns the resolved record for an index
func (s *Snapshot) Record(index string) (*monster.Record, bool) {
	rec, ok := s.records[index]
	return rec, ok
}

// Position returns the canonical position of an index
func (s *Snapshot) Position(index string) (int, bool) {
	pos, ok := s.positions[index]
	return pos, ok
}
