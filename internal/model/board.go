package model

import "sort"

// Board layout for a new session
const (
	BoardSize     = 25
	TeamWordCount = 8
	NeutralCount  = 8
	AssassinCount = 1
)

// BoardLayout returns the fixed colour multiset dealt onto every board
func BoardLayout() []Color {
	layout := make([]Color, 0, BoardSize)
	for i := 0; i < TeamWordCount; i++ {
		layout = append(layout, ColorRed)
	}
	for i := 0; i < TeamWordCount; i++ {
		layout = append(layout, ColorBlue)
	}
	for i := 0; i < NeutralCount; i++ {
		layout = append(layout, ColorNeutral)
	}
	for i := 0; i < AssassinCount; i++ {
		layout = append(layout, ColorAssassin)
	}
	return layout
}

// WordCard is the state of a single word on the board
type WordCard struct {
	Color      Color `json:"color"`
	Revealed   bool  `json:"revealed"`
	RevealedBy Team  `json:"revealed_by,omitempty"` // Team whose operative revealed it
}

// Board maps each word to its card. Words are unique within a session.
type Board map[string]WordCard

// Clone returns a copy that shares nothing with the original
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for word, card := range b {
		out[word] = card
	}
	return out
}

// Words returns the board's words in lexicographic order
func (b Board) Words() []string {
	words := make([]string, 0, len(b))
	for word := range b {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Count returns how many words carry the given colour
func (b Board) Count(color Color) int {
	n := 0
	for _, card := range b {
		if card.Color == color {
			n++
		}
	}
	return n
}

// Remaining returns how many words of the given colour are still hidden
func (b Board) Remaining(color Color) int {
	n := 0
	for _, card := range b {
		if card.Color == color && !card.Revealed {
			n++
		}
	}
	return n
}

// Equal reports whether two boards hold the same cards
func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for word, card := range b {
		if oc, ok := other[word]; !ok || oc != card {
			return false
		}
	}
	return true
}

// Redacted hides the colour of every unrevealed word
func (b Board) Redacted() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for word, card := range b {
		if !card.Revealed {
			card.Color = ColorHidden
		}
		out[word] = card
	}
	return out
}
