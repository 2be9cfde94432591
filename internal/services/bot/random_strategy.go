package bot

import (
	"github.com/mcoot/codenames-go/internal/dependencies/random"
	"github.com/mcoot/codenames-go/internal/model"
)

// RandomStrategyName is the registered name of RandomStrategy
const RandomStrategyName = "random"

// Clue texts a random spymaster chooses from
var randomClues = []string{"THING", "PLACE", "IDEA", "STUFF", "MYSTERY"}

// RandomStrategy gives one-word clues and picks random unrevealed words
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Clue returns a random clue text for one word
func (s *RandomStrategy) Clue(session *model.Session, team model.Team) (string, int) {
	return randomClues[s.random.Intn(len(randomClues))], 1
}

// Pick returns a random unrevealed word in board order
func (s *RandomStrategy) Pick(session *model.Session, team model.Team) string {
	var hidden []string
	for _, w := range session.Board.Words() {
		if !session.Board[w].Revealed {
			hidden = append(hidden, w)
		}
	}
	if len(hidden) == 0 {
		return ""
	}
	return hidden[s.random.Intn(len(hidden))]
}
