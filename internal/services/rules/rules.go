// Package rules checks proposed actions against a session snapshot and
// computes the snapshot that results from a legal one.
package rules

import (
	"fmt"
	"strings"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/outcome"
	"github.com/mcoot/codenames-go/internal/services/turn"
)

// Apply validates the action for the acting role and returns the next
// snapshot. The input session is never modified; on error no snapshot is
// produced.
func Apply(session *model.Session, action model.Action, actor model.Role) (*model.Session, error) {
	if session.IsTerminal() {
		return nil, model.ErrSessionTerminal
	}
	if !actor.Valid() {
		return nil, model.ErrWrongRole
	}
	if !turn.CanAct(session.Turn, actor) {
		return nil, model.ErrNotYourTurn
	}

	switch action.Kind {
	case model.ActionGiveClue:
		return giveClue(session, action, actor)
	case model.ActionSelectWord:
		return selectWord(session, action, actor)
	case model.ActionEndTurn:
		return endTurn(session, actor)
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownAction, action.Kind)
	}
}

func giveClue(session *model.Session, action model.Action, actor model.Role) (*model.Session, error) {
	if !actor.IsSpymaster() {
		return nil, model.ErrWrongRole
	}
	if action.ClueNumber < 0 {
		return nil, model.ErrInvalidClueNumber
	}
	text := strings.TrimSpace(action.ClueText)
	if text == "" {
		return nil, model.ErrEmptyClue
	}

	next := session.Clone()
	next.Turn, next.ActiveClue = turn.GiveClue(session.Turn, text, action.ClueNumber)
	next.MoveLog = append(next.MoveLog, fmt.Sprintf("%s %s: %s (%d)",
		actor.Team(), actor.Title(), text, action.ClueNumber))
	return next, nil
}

func selectWord(session *model.Session, action model.Action, actor model.Role) (*model.Session, error) {
	if !actor.IsOperative() {
		return nil, model.ErrWrongRole
	}
	word, card, ok := lookup(session.Board, action.Word)
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownWord, action.Word)
	}
	if card.Revealed {
		return nil, fmt.Errorf("%w: %q", model.ErrAlreadyRevealed, word)
	}

	team := actor.Team()
	next := session.Clone()
	card.Revealed = true
	card.RevealedBy = team
	next.Board[word] = card
	next.MoveLog = append(next.MoveLog, fmt.Sprintf("%s %s selected: %s (%s)",
		team, actor.Title(), word, card.Color))

	if card.Color == model.TeamColor(team) {
		next.Turn, next.ActiveClue = turn.CorrectPick(session.Turn, session.ActiveClue)
	} else {
		next.Turn, next.ActiveClue = turn.IncorrectPick(session.Turn)
	}

	if result := outcome.Evaluate(next.Board); result != nil {
		next.Terminal = result
		next.ActiveClue = nil
		next.MoveLog = append(next.MoveLog, describeResult(result))
	}
	return next, nil
}

func endTurn(session *model.Session, actor model.Role) (*model.Session, error) {
	if !actor.IsOperative() {
		return nil, model.ErrWrongRole
	}

	next := session.Clone()
	next.Turn, next.ActiveClue = turn.EndTurn(session.Turn)
	next.MoveLog = append(next.MoveLog, fmt.Sprintf("%s %s ended the turn", actor.Team(), actor.Title()))
	return next, nil
}

// lookup finds a board word, falling back to a case-insensitive match
func lookup(board model.Board, word string) (string, model.WordCard, bool) {
	word = strings.TrimSpace(word)
	if card, ok := board[word]; ok {
		return word, card, true
	}
	for w, card := range board {
		if strings.EqualFold(w, word) {
			return w, card, true
		}
	}
	return "", model.WordCard{}, false
}

func describeResult(t *model.Terminal) string {
	if t.Reason == model.ReasonAssassin {
		if !t.Winner.Valid() {
			return "the assassin was revealed"
		}
		return fmt.Sprintf("%s wins: %s revealed the assassin", t.Winner, t.Winner.Opponent())
	}
	return fmt.Sprintf("%s wins: all %s words revealed", t.Winner, t.Winner)
}
