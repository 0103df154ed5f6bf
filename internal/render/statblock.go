// Package render formats monsters as plain text for terminals
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
)

const (
	defaultArmorType = "natural armor"
	noLanguages      = "—"
	rule             = "────────────────────────────────────────"
)

// ImageResolver turns a record's relative image path into an absolute URL
type ImageResolver interface {
	ImageURL(path string) string
}

// Config holds the dependencies for a Renderer
type Config struct {
	// Images resolves image paths (optional; without it image lines are omitted)
	Images ImageResolver
	// Roller picks the lore quote (optional, defaults to dice.DefaultRoller)
	Roller dice.Roller
	// Language controls number formatting (optional, defaults to English)
	Language language.Tag
	// NoQuote drops the lore footer
	NoQuote bool
}

// Renderer writes stat blocks
type Renderer struct {
	images  ImageResolver
	roller  dice.Roller
	printer *message.Printer
	noQuote bool
}

// New creates a renderer
func New(cfg *Config) (*Renderer, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}
	tag := cfg.Language
	if tag == language.Und {
		tag = language.English
	}

	return &Renderer{
		images:  cfg.Images,
		roller:  roller,
		printer: message.NewPrinter(tag),
		noQuote: cfg.NoQuote,
	}, nil
}

// FormatCR renders a challenge rating the way the books print it in decimal, e.g. 0.25 or 10
func FormatCR(cr float64) string {
	return strconv.FormatFloat(cr, 'f', -1, 64)
}

// FormatXP renders experience points with grouping, or "Unknown" when absent
func (r *Renderer) FormatXP(xp *int) string {
	if xp == nil {
		return "Unknown"
	}
	return r.printer.Sprintf("%d", *xp)
}

// StatBlock writes the full stat block for a record
func (r *Renderer) StatBlock(w io.Writer, rec *monster.Record) error {
	if rec == nil {
		return errors.InvalidArgument("record is required")
	}

	b := &blockWriter{}

	b.line(strings.ToUpper(rec.Name))
	b.linef("%s %s, %s", rec.Size, rec.Type, rec.Alignment)
	if rec.Image != "" && r.images != nil {
		if u := r.images.ImageURL(rec.Image); u != "" {
			b.linef("Image: %s", u)
		}
	}
	b.line(rule)

	b.linef("Challenge Rating: %s", FormatCR(rec.ChallengeRating))
	b.linef("Experience Points: %s XP", r.FormatXP(rec.XP))
	b.line(rule)

	if ac, ok := rec.ArmorClass(); ok {
		armorType := ac.Type
		if armorType == "" {
			armorType = defaultArmorType
		}
		b.linef("Armor Class: %d (%s)", ac.Value, armorType)
	}
	b.linef("Hit Points: %d (%s)", rec.HitPoints, rec.HitDice)
	b.linef("Speed: %s", rec.Speed.String())
	b.line(rule)

	labels := make([]string, 0, 6)
	scores := make([]string, 0, 6)
	for _, a := range rec.Abilities() {
		labels = append(labels, fmt.Sprintf("%-9s", a.Label))
		scores = append(scores, fmt.Sprintf("%-9s", fmt.Sprintf("%d (%s)", a.Score, monster.FormatModifier(a.Modifier()))))
	}
	b.line(strings.TrimRight(strings.Join(labels, ""), " "))
	b.line(strings.TrimRight(strings.Join(scores, ""), " "))
	b.line(rule)

	if names := rec.ProficiencyNames(); len(names) > 0 {
		b.linef("Proficiencies: %s", strings.Join(names, ", "))
	}
	if len(rec.DamageResistances) > 0 {
		b.linef("Damage Resistances: %s", strings.Join(rec.DamageResistances, ", "))
	}
	if len(rec.DamageImmunities) > 0 {
		b.linef("Damage Immunities: %s", strings.Join(rec.DamageImmunities, ", "))
	}
	languages := rec.Languages
	if languages == "" {
		languages = noLanguages
	}
	b.linef("Languages: %s", languages)

	b.section("Special Abilities", rec.SpecialAbilities)
	b.section("Actions", rec.Actions)
	b.section("Legendary Actions", rec.LegendaryActions)

	if !r.noQuote {
		quote, err := PickQuote(r.roller)
		if err != nil {
			return err
		}
		b.line(rule)
		b.line(quote.String())
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "failed to write stat block")
	}
	return nil
}

type blockWriter struct {
	strings.Builder
}

func (b *blockWriter) line(s string) {
	b.WriteString(s)
	b.WriteByte('\n')
}

func (b *blockWriter) linef(format string, args ...any) {
	b.line(fmt.Sprintf(format, args...))
}

func (b *blockWriter) section(title string, entries []monster.Ability) {
	if len(entries) == 0 {
		return
	}
	b.line(rule)
	b.line(title)
	for _, e := range entries {
		b.linef("  %s. %s", e.Name, e.Desc)
	}
}
