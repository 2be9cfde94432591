package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/codenames-go/internal/api/middleware"
	"github.com/mcoot/codenames-go/internal/api/request"
	"github.com/mcoot/codenames-go/internal/api/response"
	"github.com/mcoot/codenames-go/internal/feed"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/bot"
	"github.com/mcoot/codenames-go/internal/services/game"
	"github.com/mcoot/codenames-go/internal/services/lobby"
	"github.com/mcoot/codenames-go/internal/web/views"
)

// GameHandler handles session endpoints
type GameHandler struct {
	lobbyController lobby.ControllerInterface
	gameController  game.ControllerInterface
	bots            bot.ServiceInterface
	feeds           *feed.Manager
	logger          *slog.Logger
}

// NewGameHandler creates a new game handler. bots may be nil, in which case
// seated bots never move.
func NewGameHandler(
	lobbyController lobby.ControllerInterface,
	gameController game.ControllerInterface,
	bots bot.ServiceInterface,
	feeds *feed.Manager,
	logger *slog.Logger,
) *GameHandler {
	return &GameHandler{
		lobbyController: lobbyController,
		gameController:  gameController,
		bots:            bots,
		feeds:           feeds,
		logger:          logger,
	}
}

// Start handles POST /api/v1/lobbies/{code}/game
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	code := lobbyCode(r)
	session, err := h.lobbyController.StartGame(r.Context(), code, player.ID)
	h.afterAction(w, r, http.StatusCreated, code, player.ID, session, err)
}

// Get handles GET /api/v1/lobbies/{code}/game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	session, role, err := h.gameController.GetSessionFor(r.Context(), model.SessionID(lobbyCode(r)), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(session, role))
}

// Abandon handles DELETE /api/v1/lobbies/{code}/game
func (h *GameHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := lobbyCode(r)

	if err := h.lobbyController.AbandonGame(r.Context(), code, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	h.feeds.Abandoned(r.Context(), model.SessionID(code))
	response.NoContent(w)
}

// Clue handles POST /api/v1/lobbies/{code}/game/clue
func (h *GameHandler) Clue(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.ClueRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Number == nil {
		WriteError(w, NewInvalidRequestError("number is required"))
		return
	}

	code := lobbyCode(r)
	session, err := h.gameController.GiveClue(r.Context(), model.SessionID(code), player.ID, req.Text, *req.Number)
	h.afterAction(w, r, http.StatusOK, code, player.ID, session, err)
}

// Select handles POST /api/v1/lobbies/{code}/game/select
func (h *GameHandler) Select(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SelectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Word == "" {
		WriteError(w, NewInvalidRequestError("word is required"))
		return
	}

	code := lobbyCode(r)
	session, err := h.gameController.SelectWord(r.Context(), model.SessionID(code), player.ID, req.Word)
	h.afterAction(w, r, http.StatusOK, code, player.ID, session, err)
}

// EndTurn handles POST /api/v1/lobbies/{code}/game/end-turn
func (h *GameHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	code := lobbyCode(r)
	session, err := h.gameController.EndTurn(r.Context(), model.SessionID(code), player.ID)
	h.afterAction(w, r, http.StatusOK, code, player.ID, session, err)
}

// Events handles GET /api/v1/lobbies/{code}/events
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	hub, ok := h.hubFor(w, r)
	if !ok {
		return
	}
	feed.ServeSSE(w, r, hub, h.gameController, player.ID, h.logger)
}

// WS handles GET /api/v1/lobbies/{code}/ws
func (h *GameHandler) WS(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	hub, ok := h.hubFor(w, r)
	if !ok {
		return
	}
	feed.ServeWS(w, r, hub, h.gameController, player.ID, h.logger)
}

// Board handles GET /api/v1/lobbies/{code}/board. Anonymous viewers see
// the board as spectators.
func (h *GameHandler) Board(w http.ResponseWriter, r *http.Request) {
	code := lobbyCode(r)
	l, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	var playerID model.PlayerID
	if player := middleware.GetPlayer(r.Context()); player != nil {
		playerID = player.ID
	}

	var component templ.Component
	session, role, err := h.gameController.GetSessionFor(r.Context(), l.SessionID(), playerID)
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		component = views.WaitingPage(l)
	case err != nil:
		WriteError(w, err)
		return
	default:
		component = views.BoardPage(code, session, role)
	}

	templ.Handler(component).ServeHTTP(w, r)
}

func (h *GameHandler) hubFor(w http.ResponseWriter, r *http.Request) (*feed.Hub, bool) {
	l, err := h.lobbyController.GetLobby(r.Context(), lobbyCode(r))
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return h.feeds.GetOrCreateHub(l.SessionID()), true
}

// afterAction reports an action's outcome. Bots whose turn it now is play
// first, and the result is recorded in the lobby once the session has
// finished.
func (h *GameHandler) afterAction(w http.ResponseWriter, r *http.Request, status int, code model.LobbyCode, playerID model.PlayerID, session *model.Session, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}

	session = h.playBots(r.Context(), code, session)
	if session.IsTerminal() {
		h.completeGame(r.Context(), code)
	}

	h.writeSession(w, r, status, session, playerID)
}

// playBots runs bot turns and returns the latest session
func (h *GameHandler) playBots(ctx context.Context, code model.LobbyCode, session *model.Session) *model.Session {
	if h.bots == nil || session.IsTerminal() {
		return session
	}

	actions, err := h.bots.ProcessBotActions(ctx, code)
	if err != nil {
		h.logger.Warn("bot turns failed",
			slog.String("lobby_code", string(code)),
			slog.String("error", err.Error()),
		)
	}
	if len(actions) == 0 {
		return session
	}

	latest, err := h.gameController.GetSession(ctx, session.ID)
	if err != nil {
		return session
	}
	return latest
}

func (h *GameHandler) completeGame(ctx context.Context, code model.LobbyCode) {
	// The session is already final; a client hanging up must not skip this
	if _, err := h.lobbyController.CompleteGame(context.WithoutCancel(ctx), code); err != nil {
		// Any later lobby read records it instead
		h.logger.Debug("game completion not recorded",
			slog.String("lobby_code", string(code)),
			slog.String("error", err.Error()),
		)
	}
}

func (h *GameHandler) writeSession(w http.ResponseWriter, r *http.Request, status int, session *model.Session, playerID model.PlayerID) {
	role, err := h.gameController.RoleOf(r.Context(), session.ID, playerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, status, response.GameStateFromModel(session.RedactedFor(role), role))
}
