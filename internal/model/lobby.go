package model

import "time"

// LobbyCode is a human-readable identifier for joining lobbies
type LobbyCode string

// LobbyState represents the current state of a lobby
type LobbyState string

const (
	LobbyStateWaiting LobbyState = "waiting" // No game in progress
	LobbyStateInGame  LobbyState = "in_game" // Game currently active
)

// LobbyMember represents a player's membership in a lobby.
// Role is empty until the player picks a seat; seatless members spectate.
type LobbyMember struct {
	Player   Player
	Role     Role
	IsHost   bool
	JoinedAt time.Time
}

// GameSummary records the result of a finished session
type GameSummary struct {
	SessionID   SessionID
	Winner      Team
	Reason      TerminalReason
	Moves       int
	CompletedAt time.Time
}

// Lobby represents a group of players who can play games together
type Lobby struct {
	Code        LobbyCode
	State       LobbyState
	Members     []LobbyMember
	GameHistory []GameSummary
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionID returns the id of the session this lobby owns
func (l *Lobby) SessionID() SessionID {
	return SessionID(l.Code)
}

// GetHost returns the current host member, or nil if none
func (l *Lobby) GetHost() *LobbyMember {
	for i := range l.Members {
		if l.Members[i].IsHost {
			return &l.Members[i]
		}
	}
	return nil
}

// GetMember returns the member with the given player ID, or nil if not found
func (l *Lobby) GetMember(playerID PlayerID) *LobbyMember {
	for i := range l.Members {
		if l.Members[i].Player.ID == playerID {
			return &l.Members[i]
		}
	}
	return nil
}

// MembersWithRole returns every member seated in the given role
func (l *Lobby) MembersWithRole(role Role) []LobbyMember {
	var out []LobbyMember
	for _, m := range l.Members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// GetSpectators returns all members without a seat
func (l *Lobby) GetSpectators() []LobbyMember {
	return l.MembersWithRole("")
}

// ReadyToStart returns true once both teams have a spymaster and an operative
func (l *Lobby) ReadyToStart() bool {
	for _, role := range AllRoles() {
		if len(l.MembersWithRole(role)) == 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no slices with the original
func (l *Lobby) Clone() *Lobby {
	if l == nil {
		return nil
	}
	out := *l
	out.Members = append([]LobbyMember(nil), l.Members...)
	out.GameHistory = append([]GameSummary(nil), l.GameHistory...)
	return &out
}
