package testutil

import (
	"time"

	"github.com/mcoot/codenames-go/internal/model"
)

// Fixed board words by colour
var (
	RedWords     = []string{"APPLE", "BANANA", "CHERRY", "DATE", "ELDER", "FIG", "GRAPE", "HAZEL"}
	BlueWords    = []string{"IRIS", "JADE", "KIWI", "LEMON", "MANGO", "NUTMEG", "OLIVE", "PEAR"}
	NeutralWords = []string{"QUINCE", "RAISIN", "SAGE", "THYME", "UMBER", "VANILLA", "WALNUT", "YAM"}
	AssassinWord = "ZEST"
)

// FixedTime is the creation time of fixture sessions
var FixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// FixedBoard returns a board with a known colour for every word
func FixedBoard() model.Board {
	board := make(model.Board, model.BoardSize)
	for _, w := range RedWords {
		board[w] = model.WordCard{Color: model.ColorRed}
	}
	for _, w := range BlueWords {
		board[w] = model.WordCard{Color: model.ColorBlue}
	}
	for _, w := range NeutralWords {
		board[w] = model.WordCard{Color: model.ColorNeutral}
	}
	board[AssassinWord] = model.WordCard{Color: model.ColorAssassin}
	return board
}

// NewSession returns a fresh session over the fixed board
func NewSession(id model.SessionID) *model.Session {
	return model.NewSession(id, FixedBoard(), FixedTime)
}

// WordPool returns at least n distinct words
func WordPool(n int) []string {
	words := append([]string{}, RedWords...)
	words = append(words, BlueWords...)
	words = append(words, NeutralWords...)
	words = append(words, AssassinWord)
	for i := len(words); i < n; i++ {
		words = append(words, "EXTRA"+string(rune('A'+i%26))+string(rune('A'+i/26)))
	}
	return words[:max(n, 0)]
}
