package render

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/bestiary/internal/errors"
)

// LoreQuote is the footer line printed under a stat block
type LoreQuote struct {
	Text   string
	Author string
}

// String renders the quote with its attribution
func (q LoreQuote) String() string {
	return "“" + q.Text + "” ― " + q.Author
}

// LoreQuotes is the footer pool
var LoreQuotes = []LoreQuote{
	{
		Text: "The world is indeed full of peril, and in it there are many dark places; but still there is much that is fair, " +
			"and though in all lands love is now mingled with grief, it grows perhaps the greater.",
		Author: "J.R.R. Tolkien",
	},
	{Text: "Monsters are real, and ghosts are real too. They live inside us, and sometimes, they win.", Author: "Stephen King"},
	{Text: "Do not be afraid of the monsters, for they are but shadows of your own fears.", Author: "Unknown"},
	{Text: "The only thing we have to fear is fear itself.", Author: "Franklin D. Roosevelt"},
	{Text: "Courage is resistance to fear, mastery of fear, not absence of fear.", Author: "Mark Twain"},
	{Text: "In the midst of chaos, there is also opportunity.", Author: "Sun Tzu"},
	{Text: "Not all those who wander are lost.", Author: "J.R.R. Tolkien"},
	{Text: "The greatest glory in living lies not in never falling, but in rising every time we fall.", Author: "Nelson Mandela"},
}

// PickQuote draws one quote uniformly
func PickQuote(roller dice.Roller) (LoreQuote, error) {
	roll, err := roller.Roll(len(LoreQuotes))
	if err != nil {
		return LoreQuote{}, errors.Wrap(err, "failed to roll lore quote")
	}
	if roll < 1 || roll > len(LoreQuotes) {
		return LoreQuote{}, errors.Internalf("roll %d outside quote pool", roll)
	}
	return LoreQuotes[roll-1], nil
}
