package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/codenames-go/internal/dependencies/clock"
	"github.com/mcoot/codenames-go/internal/dependencies/random"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/board"
	"github.com/mcoot/codenames-go/internal/services/game"
	"github.com/mcoot/codenames-go/internal/services/wordpool"
	"github.com/mcoot/codenames-go/internal/storage"
)

const (
	// LobbyCodeLength is the length of generated lobby codes
	LobbyCodeLength = 6
	// LobbyCodeAlphabet is the characters used in lobby codes (avoid confusing chars)
	LobbyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	maxCodeAttempts = 16
)

// ErrNoFreeCode is returned when no unused lobby code could be generated
var ErrNoFreeCode = errors.New("could not generate a free lobby code")

// Controller manages lobby membership, seats and the lobby's session
type Controller struct {
	storage   storage.Storage
	games     game.ControllerInterface
	generator board.GeneratorInterface
	words     wordpool.ServiceInterface
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger

	// Serialises read-modify-write of lobby records
	mu sync.Mutex
}

// NewController creates a new LobbyController
func NewController(
	storage storage.Storage,
	games game.ControllerInterface,
	generator board.GeneratorInterface,
	words wordpool.ServiceInterface,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		games:     games,
		generator: generator,
		words:     words,
		clock:     clock,
		random:    random,
		logger:    logger,
	}
}

// CreateLobby creates a new lobby with the given player as host
func (c *Controller) CreateLobby(ctx context.Context, host model.Player) (*model.Lobby, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, err := c.freeCode(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	lobby := &model.Lobby{
		Code:  code,
		State: model.LobbyStateWaiting,
		Members: []model.LobbyMember{
			{
				Player:   host,
				IsHost:   true,
				JoinedAt: now,
			},
		},
		GameHistory: []model.GameSummary{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	c.logger.Info("lobby created",
		slog.String("lobby_code", string(code)),
		slog.String("player_id", string(host.ID)),
	)
	return lobby, nil
}

func (c *Controller) freeCode(ctx context.Context) (model.LobbyCode, error) {
	for range maxCodeAttempts {
		code := model.LobbyCode(c.random.String(LobbyCodeLength, LobbyCodeAlphabet))
		if code == "" {
			continue
		}
		exists, err := c.storage.LobbyExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrNoFreeCode
}

// GetLobby retrieves a lobby by code. A game that has finished since the
// last read is recorded first.
func (c *Controller) GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, _, err := c.loadLobby(ctx, code)
	return lobby, err
}

// loadLobby reads a lobby and, when its session has reached a terminal
// state, records the game and reopens the lobby. The summary is nil when
// nothing was recorded. Callers hold c.mu.
func (c *Controller) loadLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, *model.GameSummary, error) {
	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if lobby.State != model.LobbyStateInGame {
		return lobby, nil, nil
	}

	session, err := c.games.GetSession(ctx, lobby.SessionID())
	if errors.Is(err, model.ErrSessionNotFound) {
		// The session expired underneath the lobby
		lobby.State = model.LobbyStateWaiting
		lobby.UpdatedAt = c.clock.Now()
		if err := c.storage.SaveLobby(ctx, lobby); err != nil {
			return nil, nil, err
		}
		return lobby, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if !session.IsTerminal() {
		return lobby, nil, nil
	}

	now := c.clock.Now()
	summary := model.GameSummary{
		SessionID:   session.ID,
		Winner:      session.Terminal.Winner,
		Reason:      session.Terminal.Reason,
		Moves:       len(session.MoveLog),
		CompletedAt: now,
	}
	lobby.GameHistory = append(lobby.GameHistory, summary)
	lobby.State = model.LobbyStateWaiting
	lobby.UpdatedAt = now

	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, nil, err
	}

	c.logger.Info("game completed",
		slog.String("lobby_code", string(code)),
		slog.String("winner", string(summary.Winner)),
		slog.String("reason", string(summary.Reason)),
	)
	return lobby, &summary, nil
}

// JoinLobby adds a player to a lobby without a seat
func (c *Controller) JoinLobby(ctx context.Context, code model.LobbyCode, player model.Player) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	if lobby.GetMember(player.ID) != nil {
		return model.ErrAlreadyInLobby
	}

	lobby.Members = append(lobby.Members, model.LobbyMember{
		Player:   player,
		JoinedAt: c.clock.Now(),
	})
	lobby.UpdatedAt = c.clock.Now()

	return c.storage.SaveLobby(ctx, lobby)
}

// LeaveLobby removes a player from a lobby. The last human to leave
// takes the lobby and its session with them.
func (c *Controller) LeaveLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	member := lobby.GetMember(playerID)
	if member == nil {
		return model.ErrNotInLobby
	}
	wasHost := member.IsHost

	for i, m := range lobby.Members {
		if m.Player.ID == playerID {
			lobby.Members = append(lobby.Members[:i], lobby.Members[i+1:]...)
			break
		}
	}

	// Bots never host, so a lobby left with only bots closes
	next := -1
	for i, m := range lobby.Members {
		if !m.Player.IsBot {
			next = i
			break
		}
	}
	if next < 0 {
		if err := c.discardSession(ctx, lobby.SessionID()); err != nil {
			return err
		}
		c.logger.Info("lobby closed", slog.String("lobby_code", string(code)))
		return c.storage.DeleteLobby(ctx, code)
	}

	if wasHost {
		lobby.Members[next].IsHost = true
	}

	lobby.UpdatedAt = c.clock.Now()
	return c.storage.SaveLobby(ctx, lobby)
}

// SelectRole seats a member in a role, replacing their previous seat.
// An empty role clears the seat. Each team has at most one spymaster.
func (c *Controller) SelectRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, role model.Role) error {
	if role != "" && !role.Valid() {
		return model.ErrInvalidRole
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, _, err := c.loadLobby(ctx, code)
	if err != nil {
		return err
	}

	// Seats are frozen while a game is running
	if lobby.State == model.LobbyStateInGame {
		return model.ErrGameInProgress
	}

	member := lobby.GetMember(playerID)
	if member == nil {
		return model.ErrNotInLobby
	}

	if role.IsSpymaster() {
		for _, m := range lobby.MembersWithRole(role) {
			if m.Player.ID != playerID {
				return model.ErrRoleTaken
			}
		}
	}

	member.Role = role
	lobby.UpdatedAt = c.clock.Now()

	return c.storage.SaveLobby(ctx, lobby)
}

// TransferHost makes another member the host
func (c *Controller) TransferHost(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, newHostID model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, err := c.storage.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	currentHost := lobby.GetHost()
	if currentHost == nil || currentHost.Player.ID != requestingPlayer {
		return model.ErrNotHost
	}

	newHost := lobby.GetMember(newHostID)
	if newHost == nil {
		return model.ErrNotInLobby
	}
	if newHost.Player.IsBot {
		return model.ErrBotCannotHost
	}

	currentHost.IsHost = false
	newHost.IsHost = true
	lobby.UpdatedAt = c.clock.Now()

	return c.storage.SaveLobby(ctx, lobby)
}

// StartGame deals a board and starts the lobby's session with the
// current seats
func (c *Controller) StartGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, _, err := c.loadLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	host := lobby.GetHost()
	if host == nil || host.Player.ID != requestingPlayer {
		return nil, model.ErrNotHost
	}

	if lobby.State == model.LobbyStateInGame {
		return nil, model.ErrGameInProgress
	}

	if !lobby.ReadyToStart() {
		return nil, model.ErrInsufficientPlayers
	}

	pool, err := c.words.Words()
	if err != nil {
		return nil, err
	}
	b, err := c.generator.Generate(pool)
	if err != nil {
		return nil, err
	}

	id := lobby.SessionID()
	if err := c.seatPlayers(ctx, id, lobby); err != nil {
		return nil, err
	}

	session, err := c.games.StartSession(ctx, id, b)
	if err != nil {
		return nil, err
	}

	lobby.State = model.LobbyStateInGame
	lobby.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveLobby(ctx, lobby); err != nil {
		return nil, err
	}

	return session, nil
}

// seatPlayers replaces the session's role assignments with the lobby's seats
func (c *Controller) seatPlayers(ctx context.Context, id model.SessionID, lobby *model.Lobby) error {
	if err := c.storage.DeleteRoleAssignments(ctx, id); err != nil {
		return err
	}
	now := c.clock.Now()
	for _, m := range lobby.Members {
		if m.Role == "" {
			continue
		}
		ra := &model.RoleAssignment{
			SessionID:  id,
			PlayerID:   m.Player.ID,
			Role:       m.Role,
			AssignedAt: now,
		}
		if err := c.storage.SaveRoleAssignment(ctx, ra); err != nil {
			return fmt.Errorf("seating %s: %w", m.Player.ID, err)
		}
	}
	return nil
}

// AbandonGame discards the running session
func (c *Controller) AbandonGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, _, err := c.loadLobby(ctx, code)
	if err != nil {
		return err
	}

	host := lobby.GetHost()
	if host == nil || host.Player.ID != requestingPlayer {
		return model.ErrNotHost
	}

	if lobby.State != model.LobbyStateInGame {
		return model.ErrNoGameInProgress
	}

	if err := c.discardSession(ctx, lobby.SessionID()); err != nil {
		return err
	}

	lobby.State = model.LobbyStateWaiting
	lobby.UpdatedAt = c.clock.Now()
	return c.storage.SaveLobby(ctx, lobby)
}

func (c *Controller) discardSession(ctx context.Context, id model.SessionID) error {
	if err := c.games.DeleteSession(ctx, id); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		return err
	}
	return c.storage.DeleteRoleAssignments(ctx, id)
}

// CompleteGame records the finished session in the lobby history and
// reopens the lobby. The session itself is kept so the final board stays
// visible.
func (c *Controller) CompleteGame(ctx context.Context, code model.LobbyCode) (*model.GameSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lobby, summary, err := c.loadLobby(ctx, code)
	switch {
	case err != nil:
		return nil, err
	case summary != nil:
		return summary, nil
	case lobby.State == model.LobbyStateInGame:
		return nil, model.ErrGameInProgress
	default:
		return nil, model.ErrNoGameInProgress
	}
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateLobby(ctx context.Context, host model.Player) (*model.Lobby, error)
	GetLobby(ctx context.Context, code model.LobbyCode) (*model.Lobby, error)
	JoinLobby(ctx context.Context, code model.LobbyCode, player model.Player) error
	LeaveLobby(ctx context.Context, code model.LobbyCode, playerID model.PlayerID) error
	SelectRole(ctx context.Context, code model.LobbyCode, playerID model.PlayerID, role model.Role) error
	TransferHost(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID, newHostID model.PlayerID) error
	StartGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) (*model.Session, error)
	AbandonGame(ctx context.Context, code model.LobbyCode, requestingPlayer model.PlayerID) error
	CompleteGame(ctx context.Context, code model.LobbyCode) (*model.GameSummary, error)
}

var _ ControllerInterface = (*Controller)(nil)
