package response

import (
	"time"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// LobbyMember represents a lobby member
type LobbyMember struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
	IsHost      bool   `json:"is_host"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// LobbyMemberFromModel converts model.LobbyMember
func LobbyMemberFromModel(m model.LobbyMember) LobbyMember {
	return LobbyMember{
		PlayerID:    string(m.Player.ID),
		DisplayName: m.Player.DisplayName,
		Role:        string(m.Role),
		IsHost:      m.IsHost,
		IsBot:       m.Player.IsBot,
	}
}

// GameSummary represents a completed game summary
type GameSummary struct {
	SessionID   string    `json:"session_id"`
	Winner      string    `json:"winner"`
	Reason      string    `json:"reason"`
	Moves       int       `json:"moves"`
	CompletedAt time.Time `json:"completed_at"`
}

// GameSummaryFromModel converts model.GameSummary
func GameSummaryFromModel(g model.GameSummary) GameSummary {
	return GameSummary{
		SessionID:   string(g.SessionID),
		Winner:      string(g.Winner),
		Reason:      string(g.Reason),
		Moves:       g.Moves,
		CompletedAt: g.CompletedAt,
	}
}

// Lobby represents a lobby in API responses
type Lobby struct {
	Code        string           `json:"code"`
	State       string           `json:"state"`
	Members     []LobbyMember    `json:"members"`
	GameHistory []GameSummary    `json:"game_history,omitempty"`
	Standings   *model.Standings `json:"standings,omitempty"`
}

// LobbyFromModel converts model.Lobby. Standings are only reported once a
// game has finished.
func LobbyFromModel(l *model.Lobby, standings *model.Standings) Lobby {
	members := make([]LobbyMember, len(l.Members))
	for i, m := range l.Members {
		members[i] = LobbyMemberFromModel(m)
	}

	history := make([]GameSummary, len(l.GameHistory))
	for i, g := range l.GameHistory {
		history[i] = GameSummaryFromModel(g)
	}

	lobby := Lobby{
		Code:        string(l.Code),
		State:       string(l.State),
		Members:     members,
		GameHistory: history,
	}
	if standings != nil && standings.Games > 0 {
		lobby.Standings = standings
	}
	return lobby
}

// Card is one board word as the viewer sees it
type Card struct {
	Word       string `json:"word"`
	Color      string `json:"color"`
	Revealed   bool   `json:"revealed"`
	RevealedBy string `json:"revealed_by,omitempty"`
}

// Clue is the active clue
type Clue struct {
	Text             string `json:"text"`
	Number           int    `json:"number"`
	RemainingGuesses int    `json:"remaining_guesses"`
}

// GameState represents a session as seen by one viewer
type GameState struct {
	SessionID  string   `json:"session_id"`
	Version    int64    `json:"version"`
	Turn       string   `json:"turn"`
	ActiveClue *Clue    `json:"active_clue,omitempty"`
	Cards      []Card   `json:"cards"`
	MoveLog    []string `json:"move_log"`
	Winner     string   `json:"winner,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	ViewerRole string   `json:"viewer_role,omitempty"`
}

// GameStateFromModel converts a session, already redacted for the viewer.
// Cards are listed in word order.
func GameStateFromModel(s *model.Session, viewer model.Role) GameState {
	words := s.Board.Words()
	cards := make([]Card, len(words))
	for i, w := range words {
		c := s.Board[w]
		cards[i] = Card{
			Word:       w,
			Color:      string(c.Color),
			Revealed:   c.Revealed,
			RevealedBy: string(c.RevealedBy),
		}
	}

	state := GameState{
		SessionID:  string(s.ID),
		Version:    s.Version,
		Turn:       string(s.Turn),
		Cards:      cards,
		MoveLog:    append([]string{}, s.MoveLog...),
		ViewerRole: string(viewer),
	}
	if s.ActiveClue != nil {
		state.ActiveClue = &Clue{
			Text:             s.ActiveClue.Text,
			Number:           s.ActiveClue.Number,
			RemainingGuesses: s.ActiveClue.RemainingGuesses,
		}
	}
	if s.Terminal != nil {
		state.Winner = string(s.Terminal.Winner)
		state.Reason = string(s.Terminal.Reason)
	}
	return state
}

// Health is the health check response
type Health struct {
	Status    string `json:"status"`
	WordCount int    `json:"word_count"`
}
