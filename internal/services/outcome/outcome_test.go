package outcome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/testutil"
)

func reveal(board model.Board, by model.Team, words ...string) {
	for _, w := range words {
		card := board[w]
		card.Revealed = true
		card.RevealedBy = by
		board[w] = card
	}
}

func TestFreshBoardIsNotTerminal(t *testing.T) {
	assert.Nil(t, Evaluate(testutil.FixedBoard()))
}

func TestPartialRevealIsNotTerminal(t *testing.T) {
	board := testutil.FixedBoard()
	reveal(board, model.TeamRed, testutil.RedWords[:7]...)
	reveal(board, model.TeamBlue, testutil.BlueWords[:7]...)
	reveal(board, model.TeamRed, testutil.NeutralWords...)

	assert.Nil(t, Evaluate(board))
}

func TestAllRedRevealedWins(t *testing.T) {
	board := testutil.FixedBoard()
	reveal(board, model.TeamRed, testutil.RedWords...)

	result := Evaluate(board)
	require.NotNil(t, result)
	assert.Equal(t, model.Terminal{Winner: model.TeamRed, Reason: model.ReasonAllRevealed}, *result)
}

func TestAllBlueRevealedWins(t *testing.T) {
	board := testutil.FixedBoard()
	reveal(board, model.TeamBlue, testutil.BlueWords...)

	result := Evaluate(board)
	require.NotNil(t, result)
	assert.Equal(t, model.TeamBlue, result.Winner)
}

func TestOpponentCompletingSetStillWins(t *testing.T) {
	board := testutil.FixedBoard()
	reveal(board, model.TeamBlue, testutil.BlueWords[:7]...)
	// red's operative reveals blue's last word
	reveal(board, model.TeamRed, testutil.BlueWords[7])

	result := Evaluate(board)
	require.NotNil(t, result)
	assert.Equal(t, model.TeamBlue, result.Winner)
}

func TestAssassinLosesForRevealingTeam(t *testing.T) {
	for _, team := range []model.Team{model.TeamRed, model.TeamBlue} {
		t.Run(string(team), func(t *testing.T) {
			board := testutil.FixedBoard()
			reveal(board, team, testutil.AssassinWord)

			result := Evaluate(board)
			require.NotNil(t, result)
			assert.Equal(t, team.Opponent(), result.Winner)
			assert.Equal(t, model.ReasonAssassin, result.Reason)
		})
	}
}

func TestAssassinTakesPrecedence(t *testing.T) {
	board := testutil.FixedBoard()
	reveal(board, model.TeamRed, testutil.RedWords...)
	reveal(board, model.TeamRed, testutil.AssassinWord)

	result := Evaluate(board)
	require.NotNil(t, result)
	assert.Equal(t, model.TeamBlue, result.Winner)
	assert.Equal(t, model.ReasonAssassin, result.Reason)
}

func TestUnattributedAssassinCreditsNoTeam(t *testing.T) {
	board := testutil.FixedBoard()
	reveal(board, "", testutil.AssassinWord)

	result := Evaluate(board)
	require.NotNil(t, result)
	assert.Equal(t, model.ReasonAssassin, result.Reason)
	assert.Empty(t, result.Winner)
}

func TestRedactedBoardIsNotTerminal(t *testing.T) {
	board := testutil.FixedBoard().Redacted()
	assert.Nil(t, Evaluate(board))
}
