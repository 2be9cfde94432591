package board

import (
	"strings"

	"github.com/mcoot/codenames-go/internal/dependencies/random"
	"github.com/mcoot/codenames-go/internal/model"
)

// Generator deals new boards from a word pool
type Generator struct {
	random random.Random
}

// New creates a new board Generator
func New(random random.Random) *Generator {
	return &Generator{
		random: random,
	}
}

// Generate picks 25 words from the pool and assigns each a colour.
// Word selection and colour assignment use two independent shuffles, so
// a word's colour does not depend on its position in the pool.
func (g *Generator) Generate(pool []string) (model.Board, error) {
	words := Normalize(pool)
	if len(words) < model.BoardSize {
		return nil, model.ErrInsufficientWordPool
	}

	g.random.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
	words = words[:model.BoardSize]

	colors := model.BoardLayout()
	g.random.Shuffle(len(colors), func(i, j int) {
		colors[i], colors[j] = colors[j], colors[i]
	})

	board := make(model.Board, model.BoardSize)
	for i, word := range words {
		board[word] = model.WordCard{Color: colors[i]}
	}
	return board, nil
}

// Normalize upper-cases and trims every word, dropping blanks and
// duplicates while keeping first-seen order
func Normalize(pool []string) []string {
	seen := make(map[string]bool, len(pool))
	out := make([]string, 0, len(pool))
	for _, w := range pool {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Interface for dependency injection
type GeneratorInterface interface {
	Generate(pool []string) (model.Board, error)
}

var _ GeneratorInterface = (*Generator)(nil)
