// Package replica keeps a client's local copy of a session in step with
// the change notifications published by the store.
package replica

import (
	"sort"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/outcome"
)

// Card is one board word in display order
type Card struct {
	Word       string      `json:"word"`
	Color      model.Color `json:"color"`
	Revealed   bool        `json:"revealed"`
	RevealedBy model.Team  `json:"revealed_by,omitempty"`
}

// View is a client's local snapshot of a session
type View struct {
	SessionID  model.SessionID `json:"session_id"`
	Version    int64           `json:"version"`
	Board      model.Board     `json:"-"`
	Cards      []Card          `json:"cards"`
	Turn       model.Turn      `json:"turn"`
	ActiveClue *model.Clue     `json:"active_clue,omitempty"`
	MoveLog    []string        `json:"move_log"`
	Terminal   *model.Terminal `json:"terminal,omitempty"`
}

// Seed builds a view from a full snapshot. It may be called at any time
// to resynchronise.
func Seed(s *model.Session) *View {
	return Fold(nil, model.FullNotification(s))
}

// Fold merges a change notification into the local view and returns the
// new view; local is left untouched. Full notifications replace the view.
// Partial notifications replace only the fields they name. Notifications
// older than the view are ignored, and folding the same notification twice
// gives the same view as folding it once. A partial notification that does
// not belong to the view leaves it as it was; see NeedsSeed.
func Fold(local *View, n model.ChangeNotification) *View {
	if n.Full {
		next := &View{SessionID: n.SessionID, Version: n.Version}
		merge(next, n)
		return next
	}
	if NeedsSeed(local, n) {
		if local == nil {
			return nil
		}
		return local.clone()
	}
	if n.Version < local.Version {
		return local.clone()
	}

	next := local.clone()
	next.Version = n.Version
	merge(next, n)
	return next
}

// NeedsSeed reports whether n cannot be folded into local: a partial
// notification with no view to merge into, or one for another session.
// The view must be re-seeded from a fresh read.
func NeedsSeed(local *View, n model.ChangeNotification) bool {
	return !n.Full && (local == nil || local.SessionID != n.SessionID)
}

func merge(v *View, n model.ChangeNotification) {
	if n.Has(model.FieldBoard) {
		// Boards are adopted wholesale, including words not seen before
		v.Board = n.Board.Clone()
		v.Cards = cards(v.Board)
	}
	if n.Has(model.FieldTurn) {
		v.Turn = n.Turn
	}
	if n.Has(model.FieldActiveClue) {
		v.ActiveClue = nil
		if n.ActiveClue != nil {
			clue := *n.ActiveClue
			v.ActiveClue = &clue
		}
	}
	if n.Has(model.FieldMoveLog) {
		// The log is replaced, never appended, so replays cannot duplicate it
		v.MoveLog = append([]string{}, n.MoveLog...)
	}
	if n.Has(model.FieldTerminal) {
		v.Terminal = nil
		if n.Terminal != nil {
			terminal := *n.Terminal
			v.Terminal = &terminal
		}
	}
	if v.MoveLog == nil {
		v.MoveLog = []string{}
	}
}

// cards orders the board lexicographically by word for display.
// Position carries no game meaning.
func cards(board model.Board) []Card {
	out := make([]Card, 0, len(board))
	for word, card := range board {
		out = append(out, Card{
			Word:       word,
			Color:      card.Color,
			Revealed:   card.Revealed,
			RevealedBy: card.RevealedBy,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Word < out[j].Word })
	return out
}

// Outcome returns the recorded result, or re-derives it from the board
// for views that joined after the game ended
func (v *View) Outcome() *model.Terminal {
	if v.Terminal != nil {
		return v.Terminal
	}
	return outcome.Evaluate(v.Board)
}

func (v *View) clone() *View {
	out := *v
	out.Board = v.Board.Clone()
	out.Cards = append([]Card(nil), v.Cards...)
	out.MoveLog = append([]string{}, v.MoveLog...)
	if v.ActiveClue != nil {
		clue := *v.ActiveClue
		out.ActiveClue = &clue
	}
	if v.Terminal != nil {
		terminal := *v.Terminal
		out.Terminal = &terminal
	}
	return &out
}
