package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
)

func poolIDs(snapshot *catalog.Snapshot, spec catalog.FilterSpec) []string {
	var ids []string
	for _, e := range catalog.RandomPool(snapshot, spec) {
		ids = append(ids, e.GetID())
	}
	return ids
}

func TestRandomPool(t *testing.T) {
	refs := []*monster.Ref{{Index: "aboleth"}, {Index: "bat"}, {Index: "zombie"}}
	records := []*monster.Record{
		{Index: "aboleth", Type: "aberration", ChallengeRating: 10},
		{Index: "bat", Type: "beast", ChallengeRating: 0},
	}
	snapshot := catalog.NewSnapshot(refs, records, time.Now())

	t.Run("no filter draws from resolved records", func(t *testing.T) {
		assert.Equal(t, []string{"aboleth", "bat"}, poolIDs(snapshot, catalog.FilterSpec{}))
	})

	t.Run("active filter narrows the pool", func(t *testing.T) {
		assert.Equal(t, []string{"bat"}, poolIDs(snapshot, catalog.FilterSpec{Type: "Beast"}))
	})

	t.Run("nothing matches falls back to every ref", func(t *testing.T) {
		spec := catalog.FilterSpec{MinCR: catalog.CR(30)}
		assert.Equal(t, []string{"aboleth", "bat", "zombie"}, poolIDs(snapshot, spec))
	})

	t.Run("nil snapshot", func(t *testing.T) {
		assert.Empty(t, catalog.RandomPool(nil, catalog.FilterSpec{}))
	})
}
