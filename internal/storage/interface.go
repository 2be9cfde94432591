package storage

import (
	"context"

	"github.com/mcoot/codenames-go/internal/model"
)

// UpdateFunc computes the next snapshot from the latest stored one.
// It receives a copy it may modify; returning an error aborts the write.
type UpdateFunc func(current *model.Session) (*model.Session, error)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Lobby operations
	SaveLobby(ctx context.Context, lobby *model.Lobby) error
	GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error)
	DeleteLobby(ctx context.Context, code model.LobbyCode) error
	LobbyExists(ctx context.Context, code model.LobbyCode) (bool, error)

	// Session operations. Every write bumps the session's Version and
	// publishes a change notification to the session's subscribers.
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	SaveSession(ctx context.Context, session *model.Session) (*model.Session, error)
	UpdateSession(ctx context.Context, id model.SessionID, fn UpdateFunc) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	SubscribeSession(ctx context.Context, id model.SessionID) (*Subscription, error)

	// Role assignment operations
	SaveRoleAssignment(ctx context.Context, ra *model.RoleAssignment) error
	GetRoleAssignments(ctx context.Context, id model.SessionID) ([]model.RoleAssignment, error)
	DeleteRoleAssignments(ctx context.Context, id model.SessionID) error

	// Word pool operations
	GetWordPool(ctx context.Context) ([]string, error)
	SaveWordPool(ctx context.Context, words []string) error
}
