package catalog

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
)

// RandomPool returns the candidates for a random pick: the records matching
// spec when there are any, otherwise every ref in canonical order.
func RandomPool(snapshot *Snapshot, spec FilterSpec) []core.Entity {
	if snapshot == nil {
		return nil
	}

	if matched := Filter(snapshot.Records, spec); len(matched) > 0 {
		return monster.RecordEntities(matched)
	}
	return monster.RefEntities(snapshot.Refs)
}
