package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mcoot/codenames-go/internal/dependencies/clock"
	"github.com/mcoot/codenames-go/internal/dependencies/random"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/game"
	"github.com/mcoot/codenames-go/internal/services/lobby"
	"github.com/mcoot/codenames-go/internal/storage"
)

const (
	// PlayerIDAlphabet is the character set for generating bot player IDs
	PlayerIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// PlayerIDLength is the length of generated bot player IDs
	PlayerIDLength = 16
	// MaxBotIterations is a safety limit for the ProcessBotActions loop
	MaxBotIterations = 200
)

// BotAction is a single move a bot made during ProcessBotActions
type BotAction struct {
	PlayerID model.PlayerID
	Role     model.Role
	Action   model.Action
}

// Service seats bots in lobbies and plays their turns
type Service struct {
	storage         storage.Storage
	lobbyController lobby.ControllerInterface
	gameController  game.ControllerInterface
	strategies      map[string]Strategy
	clock           clock.Clock
	random          random.Random
	logger          *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	store storage.Storage,
	lobbyController lobby.ControllerInterface,
	gameController game.ControllerInterface,
	strategies map[string]Strategy,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:         store,
		lobbyController: lobbyController,
		gameController:  gameController,
		strategies:      strategies,
		clock:           clk,
		random:          rnd,
		logger:          logger.With(slog.String("component", "bot-service")),
	}
}

// Strategies lists the registered strategy names
func (s *Service) Strategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateBotPlayer creates a new bot player and saves it to storage
func (s *Service) CreateBotPlayer(ctx context.Context, displayName string, strategy string) (*model.Player, error) {
	player := &model.Player{
		ID:          model.PlayerID("bot-" + s.random.String(PlayerIDLength, PlayerIDAlphabet)),
		DisplayName: displayName,
		IsGuest:     true,
		IsBot:       true,
		BotStrategy: strategy,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

// AddBotToLobby creates a bot and seats it in role. Only the host can add
// bots, and only between games.
func (s *Service) AddBotToLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, role model.Role, strategy string) (*model.Player, error) {
	if strategy == "" {
		strategy = RandomStrategyName
	}
	if _, ok := s.strategies[strategy]; !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownStrategy, strategy)
	}
	if !role.Valid() {
		return nil, model.ErrInvalidRole
	}

	lob, err := s.lobbyController.GetLobby(ctx, code)
	if err != nil {
		return nil, err
	}

	host := lob.GetHost()
	if host == nil || host.Player.ID != requestingPlayerID {
		return nil, model.ErrNotHost
	}
	if lob.State == model.LobbyStateInGame {
		return nil, model.ErrGameInProgress
	}
	if role.IsSpymaster() && len(lob.MembersWithRole(role)) > 0 {
		return nil, model.ErrRoleTaken
	}

	botCount := 0
	for _, m := range lob.Members {
		if m.Player.IsBot {
			botCount++
		}
	}

	displayName := fmt.Sprintf("Bot %d", botCount+1)
	bot, err := s.CreateBotPlayer(ctx, displayName, strategy)
	if err != nil {
		return nil, err
	}

	if err := s.lobbyController.JoinLobby(ctx, code, *bot); err != nil {
		return nil, err
	}
	if err := s.lobbyController.SelectRole(ctx, code, bot.ID, role); err != nil {
		// Do not leave a seatless bot behind
		_ = s.lobbyController.LeaveLobby(ctx, code, bot.ID)
		return nil, err
	}

	s.logger.Info("bot added to lobby",
		slog.String("lobby_code", string(code)),
		slog.String("bot_id", string(bot.ID)),
		slog.String("role", string(role)),
		slog.String("strategy", strategy),
	)

	return bot, nil
}

// RemoveBotFromLobby removes a bot from the lobby. Only the host can
// remove bots, and only between games.
func (s *Service) RemoveBotFromLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, botPlayerID model.PlayerID) error {
	lob, err := s.lobbyController.GetLobby(ctx, code)
	if err != nil {
		return err
	}

	host := lob.GetHost()
	if host == nil || host.Player.ID != requestingPlayerID {
		return model.ErrNotHost
	}
	if lob.State == model.LobbyStateInGame {
		return model.ErrGameInProgress
	}

	member := lob.GetMember(botPlayerID)
	if member == nil {
		return model.ErrNotInLobby
	}
	if !member.Player.IsBot {
		return model.ErrNotBot
	}

	return s.lobbyController.LeaveLobby(ctx, code, botPlayerID)
}

// ProcessBotActions plays every bot turn in the lobby's running session
// until a human is up or the session ends, and returns the moves made
func (s *Service) ProcessBotActions(ctx context.Context, code model.LobbyCode) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		lob, err := s.lobbyController.GetLobby(ctx, code)
		if err != nil {
			return actions, err
		}
		if lob.State != model.LobbyStateInGame {
			break
		}

		session, err := s.gameController.GetSession(ctx, lob.SessionID())
		if errors.Is(err, model.ErrSessionNotFound) {
			break
		}
		if err != nil {
			return actions, err
		}
		if session.IsTerminal() {
			break
		}

		role := session.Turn.Role()
		bot := botFor(lob, role)
		if bot == nil {
			break // A human holds the seat
		}

		action := s.decide(bot, session, role)
		if _, err := s.gameController.Submit(ctx, session.ID, bot.ID, action); err != nil {
			return actions, err
		}

		s.logger.Debug("bot acted",
			slog.String("session_id", string(session.ID)),
			slog.String("player_id", string(bot.ID)),
			slog.String("action", string(action.Kind)),
		)
		actions = append(actions, BotAction{PlayerID: bot.ID, Role: role, Action: action})
	}

	return actions, nil
}

func (s *Service) decide(bot *model.Player, session *model.Session, role model.Role) model.Action {
	strategy := s.strategyForPlayer(bot)
	if role.IsSpymaster() {
		text, number := strategy.Clue(session.Clone(), role.Team())
		return model.GiveClue(text, number)
	}

	word := strategy.Pick(session.RedactedFor(role), role.Team())
	if word == "" {
		return model.EndTurn()
	}
	return model.SelectWord(word)
}

// botFor returns the bot that plays role, or nil when the role is held by
// any human
func botFor(lob *model.Lobby, role model.Role) *model.Player {
	var bot *model.Player
	for _, m := range lob.MembersWithRole(role) {
		if !m.Player.IsBot {
			return nil
		}
		if bot == nil {
			p := m.Player
			bot = &p
		}
	}
	return bot
}

// strategyForPlayer returns the strategy for a bot player, falling back to
// the random strategy if the player's strategy is not registered
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	if st, ok := s.strategies[RandomStrategyName]; ok {
		return st
	}
	return NewRandomStrategy(s.random)
}

// ServiceInterface for dependency injection
type ServiceInterface interface {
	Strategies() []string
	AddBotToLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, role model.Role, strategy string) (*model.Player, error)
	RemoveBotFromLobby(ctx context.Context, code model.LobbyCode, requestingPlayerID model.PlayerID, botPlayerID model.PlayerID) error
	ProcessBotActions(ctx context.Context, code model.LobbyCode) ([]BotAction, error)
}

var _ ServiceInterface = (*Service)(nil)
