// Package outcome decides whether a board has been won
package outcome

import "github.com/mcoot/codenames-go/internal/model"

// Evaluate returns the terminal state of a board, or nil while play continues.
// It reads only the board, so any snapshot can be re-evaluated.
// A revealed assassin takes precedence over a completed colour set. An
// assassin with no recorded revealer ends the game without crediting
// either team.
func Evaluate(board model.Board) *model.Terminal {
	for _, card := range board {
		if card.Color == model.ColorAssassin && card.Revealed {
			var winner model.Team
			if card.RevealedBy.Valid() {
				winner = card.RevealedBy.Opponent()
			}
			return &model.Terminal{Winner: winner, Reason: model.ReasonAssassin}
		}
	}

	for _, team := range []model.Team{model.TeamRed, model.TeamBlue} {
		color := model.TeamColor(team)
		if board.Count(color) > 0 && board.Remaining(color) == 0 {
			return &model.Terminal{Winner: team, Reason: model.ReasonAllRevealed}
		}
	}
	return nil
}
