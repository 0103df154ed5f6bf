package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
)

// SortByName returns a copy of records ordered by name, ascending and case-insensitive
// under English collation. Ties keep their input order.
func SortByName(records []*monster.Record) []*monster.Record {
	sorted := make([]*monster.Record, len(records))
	copy(sorted, records)

	// Collators are not safe for concurrent use
	col := collate.New(language.English, collate.IgnoreCase, collate.Loose)
	sort.SliceStable(sorted, func(i, j int) bool {
		return col.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})
	return sorted
}

// TypeOptions returns the distinct creature types present in records, sorted
func TypeOptions(records []*monster.Record) []string {
	seen := make(map[string]struct{})
	types := make([]string, 0)
	for _, record := range records {
		if record == nil || record.Type == "" {
			continue
		}
		key := strings.ToLower(record.Type)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		types = append(types, record.Type)
	}

	col := collate.New(language.English, collate.IgnoreCase)
	col.SortStrings(types)
	return types
}
