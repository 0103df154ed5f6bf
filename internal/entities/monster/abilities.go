package monster

import "strconv"

// AbilityScore is a labelled ability score
type AbilityScore struct {
	Label string
	Score int
}

// Modifier returns the derived combat modifier
func (a AbilityScore) Modifier() int {
	return AbilityModifier(a.Score)
}

// AbilityModifier returns floor((score-10)/2)
func AbilityModifier(score int) int {
	diff := score - 10
	// Go division truncates toward zero
	if diff < 0 && diff%2 != 0 {
		return diff/2 - 1
	}
	return diff / 2
}

// FormatModifier renders a modifier with an explicit sign, e.g. "+3" or "-1"
func FormatModifier(mod int) string {
	if mod >= 0 {
		return "+" + strconv.Itoa(mod)
	}
	return strconv.Itoa(mod)
}
