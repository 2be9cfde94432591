package board

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codenames-go/internal/dependencies/mocks"
	"github.com/mcoot/codenames-go/internal/dependencies/random"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/testutil"
)

type GeneratorSuite struct {
	suite.Suite
	random    *mocks.MockRandom
	generator *Generator
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.generator = New(s.random)
}

func (s *GeneratorSuite) TestGenerateHasFixedDistribution() {
	board, err := New(random.New()).Generate(testutil.WordPool(60))
	s.Require().NoError(err)

	s.Len(board, model.BoardSize)
	s.Equal(model.TeamWordCount, board.Count(model.ColorRed))
	s.Equal(model.TeamWordCount, board.Count(model.ColorBlue))
	s.Equal(model.NeutralCount, board.Count(model.ColorNeutral))
	s.Equal(model.AssassinCount, board.Count(model.ColorAssassin))
	for word, card := range board {
		s.False(card.Revealed, word)
	}
}

func (s *GeneratorSuite) TestGenerateWithoutShuffleTakesPoolPrefix() {
	pool := testutil.WordPool(30)

	board, err := s.generator.Generate(pool)
	s.Require().NoError(err)

	for _, word := range pool[:25] {
		s.Contains(board, word)
	}
	for _, word := range pool[25:] {
		s.NotContains(board, word)
	}
	// Unshuffled colours follow the layout order
	s.Equal(model.ColorRed, board[pool[0]].Color)
	s.Equal(model.ColorBlue, board[pool[8]].Color)
	s.Equal(model.ColorNeutral, board[pool[16]].Color)
	s.Equal(model.ColorAssassin, board[pool[24]].Color)
}

func (s *GeneratorSuite) TestColourShuffleIsIndependentOfWordShuffle() {
	pool := testutil.WordPool(25)
	identity := make([]int, 25)
	for i := range identity {
		identity[i] = i
	}
	// Words stay put; the assassin colour moves to the front
	colours := append([]int{24}, identity[:24]...)
	s.random.QueuePermutation(identity...)
	s.random.QueuePermutation(colours...)

	board, err := s.generator.Generate(pool)
	s.Require().NoError(err)

	s.Equal(model.ColorAssassin, board[pool[0]].Color)
	s.Equal(model.ColorRed, board[pool[1]].Color)
	s.Equal(model.ColorNeutral, board[pool[24]].Color)
}

func (s *GeneratorSuite) TestInsufficientWordPool() {
	_, err := s.generator.Generate(testutil.WordPool(24))
	s.ErrorIs(err, model.ErrInsufficientWordPool)
}

func (s *GeneratorSuite) TestDuplicatesDoNotCountTowardsPool() {
	pool := testutil.WordPool(24)
	pool = append(pool, " apple ", "Apple")

	_, err := s.generator.Generate(pool)
	s.ErrorIs(err, model.ErrInsufficientWordPool)
}

func (s *GeneratorSuite) TestGenerateDoesNotModifyPool() {
	pool := testutil.WordPool(30)
	before := append([]string{}, pool...)
	s.random.QueuePermutation(29, 28, 27)

	_, err := s.generator.Generate(pool)
	s.Require().NoError(err)
	s.Equal(before, pool)
}

func (s *GeneratorSuite) TestSelectionCoversWholePool() {
	pool := make([]string, 50)
	for i := range pool {
		pool[i] = fmt.Sprintf("WORD%02d", i)
	}
	gen := New(random.New())

	seen := make(map[string]bool)
	for i := 0; i < 40; i++ {
		board, err := gen.Generate(pool)
		s.Require().NoError(err)
		for word := range board {
			seen[word] = true
		}
	}
	s.Len(seen, len(pool))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"APPLE", "PEAR"}, Normalize([]string{" apple", "", "PEAR", "Apple", "  "}))
}
