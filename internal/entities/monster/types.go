// Package monster holds the monster catalog entities decoded from the D&D 5e API
package monster

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// EntityType is the core.Entity type reported by refs and records
const EntityType = "monster"

// Ref is one entry of the upstream monster index.
// The order of a ref list is the canonical browse order.
type Ref struct {
	Index string `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

// GetID returns the stable index key
func (r *Ref) GetID() string {
	return r.Index
}

// GetType returns the entity type
func (r *Ref) GetType() string {
	return EntityType
}

// ArmorClass is one armor class entry of a stat block
type ArmorClass struct {
	Value int    `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Reference points to another upstream resource
type Reference struct {
	Index string `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
}

// Proficiency is a skill or saving throw bonus
type Proficiency struct {
	Proficiency Reference `json:"proficiency"`
	Value       int       `json:"value"`
}

// Ability is a named block of rules text (special abilities, actions, legendary actions)
type Ability struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
}

// Record is the full stat block of a monster
type Record struct {
	Index           string       `json:"index"`
	Name            string       `json:"name"`
	Size            string       `json:"size"`
	Type            string       `json:"type"`
	Alignment       string       `json:"alignment"`
	ChallengeRating float64      `json:"challenge_rating"`
	XP              *int         `json:"xp,omitempty"`
	ArmorClasses    []ArmorClass `json:"armor_class"`
	HitPoints       int          `json:"hit_points"`
	HitDice         string       `json:"hit_dice"`
	Speed           Speed        `json:"speed"`

	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`

	Proficiencies     []Proficiency `json:"proficiencies,omitempty"`
	DamageResistances []string      `json:"damage_resistances,omitempty"`
	DamageImmunities  []string      `json:"damage_immunities,omitempty"`
	Languages         string        `json:"languages,omitempty"`
	SpecialAbilities  []Ability     `json:"special_abilities,omitempty"`
	Actions           []Ability     `json:"actions,omitempty"`
	LegendaryActions  []Ability     `json:"legendary_actions,omitempty"`
	Image             string        `json:"image,omitempty"`
}

// GetID returns the stable index key
func (r *Record) GetID() string {
	return r.Index
}

// GetType returns the entity type
func (r *Record) GetType() string {
	return EntityType
}

// ArmorClass returns the authoritative (first) armor class entry
func (r *Record) ArmorClass() (ArmorClass, bool) {
	if len(r.ArmorClasses) == 0 {
		return ArmorClass{}, false
	}
	return r.ArmorClasses[0], true
}

// Abilities returns the six ability scores in stat block order
func (r *Record) Abilities() []AbilityScore {
	return []AbilityScore{
		{Label: "STR", Score: r.Strength},
		{Label: "DEX", Score: r.Dexterity},
		{Label: "CON", Score: r.Constitution},
		{Label: "INT", Score: r.Intelligence},
		{Label: "WIS", Score: r.Wisdom},
		{Label: "CHA", Score: r.Charisma},
	}
}

// ProficiencyNames returns the display names of all proficiencies
func (r *Record) ProficiencyNames() []string {
	names := make([]string, 0, len(r.Proficiencies))
	for _, p := range r.Proficiencies {
		names = append(names, p.Proficiency.Name)
	}
	return names
}

// Sizes lists the creature sizes offered by the size filter
var Sizes = []string{"Tiny", "Small", "Medium", "Large", "Huge", "Gargantuan"}

// Alignments lists the alignments offered by the alignment filter
var Alignments = []string{
	"lawful good", "neutral good", "chaotic good",
	"lawful neutral", "neutral", "chaotic neutral",
	"lawful evil", "neutral evil", "chaotic evil",
	"unaligned", "any alignment",
}

// RefEntities converts refs into a core.Entity pool
func RefEntities(refs []*Ref) []core.Entity {
	pool := make([]core.Entity, len(refs))
	for i, ref := range refs {
		pool[i] = ref
	}
	return pool
}

// RecordEntities converts records into a core.Entity pool
func RecordEntities(records []*Record) []core.Entity {
	pool := make([]core.Entity, len(records))
	for i, rec := range records {
		pool[i] = rec
	}
	return pool
}

// Compile-time check that refs and records can be used as toolkit entities
var (
	_ core.Entity = (*Ref)(nil)
	_ core.Entity = (*Record)(nil)
)
