// Package navigation implements index-cursor navigation over the canonical monster order
package navigation

// Cursor is a position in the canonical ref order.
// The zero value is Unset.
type Cursor struct {
	Position int  `json:"position"`
	Set      bool `json:"set"`
}

// Positioned returns a cursor set at i
func Positioned(i int) Cursor {
	return Cursor{Position: i, Set: true}
}

// Next returns the cursor advanced by one, wrapping at length
func (c Cursor) Next(length int) Cursor {
	if !c.Set || length <= 0 {
		return c
	}
	return Positioned((c.Position + 1) % length)
}

// Previous returns the cursor moved back by one, wrapping at length
func (c Cursor) Previous(length int) Cursor {
	if !c.Set || length <= 0 {
		return c
	}
	return Positioned((c.Position - 1 + length) % length)
}

// Clamp keeps a cursor valid after the ref list changed length
func (c Cursor) Clamp(length int) Cursor {
	if !c.Set || length <= 0 {
		return c
	}
	if c.Position >= length || c.Position < 0 {
		return Positioned(0)
	}
	return c
}
