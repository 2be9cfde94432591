package model

import "slices"

// Field names a part of the session carried by a change notification
type Field string

const (
	FieldBoard      Field = "board"
	FieldTurn       Field = "turn"
	FieldActiveClue Field = "active_clue"
	FieldMoveLog    Field = "move_log"
	FieldTerminal   Field = "terminal"
)

// AllFields lists every field a full notification carries
func AllFields() []Field {
	return []Field{FieldBoard, FieldTurn, FieldActiveClue, FieldMoveLog, FieldTerminal}
}

// ChangeNotification describes a session's new state after a write.
// A full notification replaces the subscriber's state; a partial one carries
// only the fields listed in Changed and every other field must be ignored.
type ChangeNotification struct {
	SessionID  SessionID `json:"session_id"`
	Version    int64     `json:"version"`
	Full       bool      `json:"full"`
	Changed    []Field   `json:"changed,omitempty"`
	Board      Board     `json:"board,omitempty"`
	Turn       Turn      `json:"turn,omitempty"`
	ActiveClue *Clue     `json:"active_clue,omitempty"`
	MoveLog    []string  `json:"move_log,omitempty"`
	Terminal   *Terminal `json:"terminal,omitempty"`
}

// Has returns true if the notification carries the field
func (n ChangeNotification) Has(f Field) bool {
	return n.Full || slices.Contains(n.Changed, f)
}

// FullNotification describes the complete state of a session
func FullNotification(s *Session) ChangeNotification {
	c := s.Clone()
	return ChangeNotification{
		SessionID:  c.ID,
		Version:    c.Version,
		Full:       true,
		Changed:    AllFields(),
		Board:      c.Board,
		Turn:       c.Turn,
		ActiveClue: c.ActiveClue,
		MoveLog:    c.MoveLog,
		Terminal:   c.Terminal,
	}
}

// Diff describes the transition from prev to next. A nil prev, or a
// different session id, yields a full notification.
func Diff(prev, next *Session) ChangeNotification {
	if prev == nil || prev.ID != next.ID || prev.CreatedAt != next.CreatedAt {
		return FullNotification(next)
	}

	n := ChangeNotification{
		SessionID: next.ID,
		Version:   next.Version,
	}
	if !prev.Board.Equal(next.Board) {
		n.Changed = append(n.Changed, FieldBoard)
		n.Board = next.Board.Clone()
	}
	if prev.Turn != next.Turn {
		n.Changed = append(n.Changed, FieldTurn)
		n.Turn = next.Turn
	}
	if !clueEqual(prev.ActiveClue, next.ActiveClue) {
		n.Changed = append(n.Changed, FieldActiveClue)
		if next.ActiveClue != nil {
			clue := *next.ActiveClue
			n.ActiveClue = &clue
		}
	}
	if !slices.Equal(prev.MoveLog, next.MoveLog) {
		n.Changed = append(n.Changed, FieldMoveLog)
		n.MoveLog = append([]string{}, next.MoveLog...)
	}
	if !terminalEqual(prev.Terminal, next.Terminal) {
		n.Changed = append(n.Changed, FieldTerminal)
		if next.Terminal != nil {
			terminal := *next.Terminal
			n.Terminal = &terminal
		}
	}
	return n
}

// RedactedFor hides unrevealed colours from viewers that may not see them.
// Notifications that end the game always carry the full board.
func (n ChangeNotification) RedactedFor(viewer Role) ChangeNotification {
	if viewer.IsSpymaster() || n.Terminal != nil || n.Board == nil {
		return n
	}
	n.Board = n.Board.Redacted()
	return n
}

func clueEqual(a, b *Clue) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func terminalEqual(a, b *Terminal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
