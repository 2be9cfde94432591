package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is the identity an actor presents to a session
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool   // true for unregistered players
	IsBot       bool   // true for server-driven seat fillers
	BotStrategy string // strategy name, bots only
	CreatedAt   time.Time
}

// RegisteredPlayer extends Player with authentication data
type RegisteredPlayer struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
