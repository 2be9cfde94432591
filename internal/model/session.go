package model

import "time"

// SessionID identifies a game session. It is the owning lobby's code.
type SessionID string

// SchemaVersion is the current layout of persisted sessions
const SchemaVersion = 1

// TerminalReason explains why a session ended
type TerminalReason string

const (
	ReasonAssassin    TerminalReason = "assassin"
	ReasonAllRevealed TerminalReason = "all_revealed"
)

// Clue is the spymaster's active clue during a guessing phase
type Clue struct {
	Text             string `json:"text"`
	Number           int    `json:"number"`
	RemainingGuesses int    `json:"remaining_guesses"`
}

// Terminal records the winner of a finished session
type Terminal struct {
	Winner Team           `json:"winner"`
	Reason TerminalReason `json:"reason"`
}

// Session is the shared record of one game
type Session struct {
	ID            SessionID `json:"id"`
	SchemaVersion int       `json:"schema_version"`
	Version       int64     `json:"version"` // Bumped by storage on every write
	Board         Board     `json:"board"`
	Turn          Turn      `json:"turn"`
	ActiveClue    *Clue     `json:"active_clue,omitempty"`
	MoveLog       []string  `json:"move_log"`
	Terminal      *Terminal `json:"terminal,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewSession creates a session in its initial state
func NewSession(id SessionID, board Board, now time.Time) *Session {
	return &Session{
		ID:            id,
		SchemaVersion: SchemaVersion,
		Board:         board,
		Turn:          InitialTurn,
		MoveLog:       []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsTerminal returns true once a winner has been decided
func (s *Session) IsTerminal() bool {
	return s.Terminal != nil
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Board = s.Board.Clone()
	if s.ActiveClue != nil {
		clue := *s.ActiveClue
		out.ActiveClue = &clue
	}
	if s.MoveLog != nil {
		out.MoveLog = append([]string(nil), s.MoveLog...)
	}
	if s.Terminal != nil {
		terminal := *s.Terminal
		out.Terminal = &terminal
	}
	return &out
}

// CanSeeColors returns true if the viewer may see unrevealed colours.
// Everyone sees the full board once the session is over.
func (s *Session) CanSeeColors(viewer Role) bool {
	return s.IsTerminal() || viewer.IsSpymaster()
}

// RedactedFor returns the session as seen by a viewer holding the given role.
// An empty role is a spectator.
func (s *Session) RedactedFor(viewer Role) *Session {
	out := s.Clone()
	if !s.CanSeeColors(viewer) {
		out.Board = out.Board.Redacted()
	}
	return out
}

// RoleAssignment is a player's chosen seat in a session
type RoleAssignment struct {
	SessionID  SessionID `json:"session_id"`
	PlayerID   PlayerID  `json:"player_id"`
	Role       Role      `json:"role"`
	AssignedAt time.Time `json:"assigned_at"`
}
