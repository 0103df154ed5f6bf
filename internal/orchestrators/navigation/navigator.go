package navigation

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/bestiary/internal/entities/monster"
	"github.com/KirkDiggler/bestiary/internal/errors"
)

// Config holds the dependencies for a Navigator
type Config struct {
	// Roller draws uniform positions for random selection (optional, defaults to dice.DefaultRoller)
	Roller dice.Roller
	// Refs is the canonical order (optional, may be set later with Reset)
	Refs []*monster.Ref
	// Cursor restores a previously saved position (optional)
	Cursor Cursor
}

// Navigator moves a cursor over the canonical ref order.
// Filters never change the order, so next/previous stay stable while filters change.
// A Navigator is not safe for concurrent use.
type Navigator struct {
	roller dice.Roller
	refs   []*monster.Ref
	cursor Cursor
}

// New creates a navigator
func New(cfg *Config) (*Navigator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config cannot be nil")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}

	n := &Navigator{roller: roller}
	n.refs = cfg.Refs
	n.cursor = cfg.Cursor.Clamp(len(cfg.Refs))
	if !n.cursor.Set && len(cfg.Refs) > 0 {
		n.cursor = Positioned(0)
	}
	return n, nil
}

// Reset replaces the canonical order. A non-empty list positions the cursor at 0
// unless it is already positioned; an empty list leaves the cursor unchanged.
func (n *Navigator) Reset(refs []*monster.Ref) {
	n.refs = refs
	if len(refs) == 0 {
		return
	}
	if !n.cursor.Set {
		n.cursor = Positioned(0)
		return
	}
	n.cursor = n.cursor.Clamp(len(refs))
}

// Cursor returns the current cursor
func (n *Navigator) Cursor() Cursor {
	return n.cursor
}

// Current returns the ref under the cursor
func (n *Navigator) Current() (*monster.Ref, bool) {
	if !n.cursor.Set || n.cursor.Position >= len(n.refs) {
		return nil, false
	}
	return n.refs[n.cursor.Position], true
}

// SelectByIndex positions the cursor at i. Out of range leaves state unchanged.
func (n *Navigator) SelectByIndex(i int) bool {
	if i < 0 || i >= len(n.refs) {
		return false
	}
	n.cursor = Positioned(i)
	return true
}

// SelectByRef positions the cursor on the ref with the given index key.
// An unknown key leaves state unchanged.
func (n *Navigator) SelectByRef(key string) bool {
	for i, ref := range n.refs {
		if ref.Index == key {
			n.cursor = Positioned(i)
			return true
		}
	}
	return false
}

// Next advances the cursor, wrapping to the start
func (n *Navigator) Next() {
	n.cursor = n.cursor.Next(len(n.refs))
}

// Previous moves the cursor back, wrapping to the end
func (n *Navigator) Previous() {
	n.cursor = n.cursor.Previous(len(n.refs))
}

// RandomSelection draws uniformly from pool and moves the cursor to the drawn
// entity's canonical position. An empty pool is a no-op.
func (n *Navigator) RandomSelection(pool []core.Entity) (bool, error) {
	if len(pool) == 0 {
		return false, nil
	}

	roll, err := n.roller.Roll(len(pool))
	if err != nil {
		return false, errors.Wrap(err, "failed to roll random selection")
	}

	// Roll is 1-based
	if roll < 1 || roll > len(pool) {
		return false, errors.Internalf("roll %d outside pool of %d", roll, len(pool))
	}
	picked := pool[roll-1]
	return n.SelectByRef(picked.GetID()), nil
}
