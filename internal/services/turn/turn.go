// Package turn defines whose turn it is and how each accepted action moves
// the turn and the active clue. Terminality is layered on top by the caller.
package turn

import "github.com/mcoot/codenames-go/internal/model"

// CanAct returns true if the role is the one the turn is waiting on
func CanAct(t model.Turn, role model.Role) bool {
	return role.Team() == t.Team() && role.Phase() == t.Phase()
}

// Handoff returns the opponent's clue turn
func Handoff(t model.Turn) model.Turn {
	return model.TurnOf(t.Team().Opponent(), model.PhaseClue)
}

// GiveClue moves a clue turn to the same team's guessing phase.
// A clue of n grants at most n correct guesses.
func GiveClue(t model.Turn, text string, n int) (model.Turn, *model.Clue) {
	return model.TurnOf(t.Team(), model.PhaseGuess), &model.Clue{
		Text:             text,
		Number:           n,
		RemainingGuesses: n,
	}
}

// CorrectPick spends one guess. The team keeps guessing while guesses
// remain; otherwise the turn passes and the clue is cleared.
func CorrectPick(t model.Turn, clue *model.Clue) (model.Turn, *model.Clue) {
	if clue == nil {
		return Handoff(t), nil
	}
	remaining := clue.RemainingGuesses - 1
	if remaining > 0 {
		next := *clue
		next.RemainingGuesses = remaining
		return t, &next
	}
	return Handoff(t), nil
}

// IncorrectPick passes the turn immediately, discarding unused guesses
func IncorrectPick(t model.Turn) (model.Turn, *model.Clue) {
	return Handoff(t), nil
}

// EndTurn passes the turn at the operative's request
func EndTurn(t model.Turn) (model.Turn, *model.Clue) {
	return Handoff(t), nil
}
