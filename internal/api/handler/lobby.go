package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/mcoot/codenames-go/internal/api/apierr"
	"github.com/mcoot/codenames-go/internal/api/middleware"
	"github.com/mcoot/codenames-go/internal/api/request"
	"github.com/mcoot/codenames-go/internal/api/response"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/bot"
	"github.com/mcoot/codenames-go/internal/services/lobby"
	"github.com/mcoot/codenames-go/internal/services/scoring"
)

const qrSize = 320

// LobbyHandler handles lobby-related endpoints
type LobbyHandler struct {
	lobbyController lobby.ControllerInterface
	bots            bot.ServiceInterface
	scoring         scoring.ServiceInterface
	publicURL       string
	logger          *slog.Logger
}

// NewLobbyHandler creates a new lobby handler. publicURL is the externally
// visible base URL used in join links; when empty it is derived per request.
func NewLobbyHandler(
	lobbyController lobby.ControllerInterface,
	bots bot.ServiceInterface,
	scoringService scoring.ServiceInterface,
	publicURL string,
	logger *slog.Logger,
) *LobbyHandler {
	return &LobbyHandler{
		lobbyController: lobbyController,
		bots:            bots,
		scoring:         scoringService,
		publicURL:       strings.TrimSuffix(publicURL, "/"),
		logger:          logger,
	}
}

// Create handles POST /api/v1/lobbies
func (h *LobbyHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	l, err := h.lobbyController.CreateLobby(r.Context(), *player)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, h.lobbyResponse(l))
}

// Get handles GET /api/v1/lobbies/{code}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.lobbyController.GetLobby(r.Context(), lobbyCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, h.lobbyResponse(l))
}

// Join handles POST /api/v1/lobbies/{code}/join
func (h *LobbyHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := lobbyCode(r)

	if err := h.lobbyController.JoinLobby(r.Context(), code, *player); err != nil {
		WriteError(w, err)
		return
	}

	h.writeLobby(w, r, code)
}

// Leave handles POST /api/v1/lobbies/{code}/leave
func (h *LobbyHandler) Leave(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.lobbyController.LeaveLobby(r.Context(), lobbyCode(r), player.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// SelectRole handles PUT /api/v1/lobbies/{code}/role
func (h *LobbyHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := lobbyCode(r)

	var req request.SelectRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var role model.Role
	if req.Role != "" {
		parsed, err := model.ParseRole(req.Role)
		if err != nil {
			WriteError(w, err)
			return
		}
		role = parsed
	}

	if err := h.lobbyController.SelectRole(r.Context(), code, player.ID, role); err != nil {
		WriteError(w, err)
		return
	}

	h.writeLobby(w, r, code)
}

// TransferHost handles POST /api/v1/lobbies/{code}/transfer-host
func (h *LobbyHandler) TransferHost(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := lobbyCode(r)

	var req request.TransferHostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NewHostID == "" {
		WriteError(w, NewInvalidRequestError("new_host_id is required"))
		return
	}

	if err := h.lobbyController.TransferHost(r.Context(), code, player.ID, model.PlayerID(req.NewHostID)); err != nil {
		WriteError(w, err)
		return
	}

	h.writeLobby(w, r, code)
}

// AddBot handles POST /api/v1/lobbies/{code}/bots
func (h *LobbyHandler) AddBot(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := lobbyCode(r)

	var req request.AddBotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.bots.AddBotToLobby(r.Context(), code, player.ID, role, req.Strategy); err != nil {
		WriteError(w, err)
		return
	}

	l, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, h.lobbyResponse(l))
}

// RemoveBot handles DELETE /api/v1/lobbies/{code}/bots/{playerID}
func (h *LobbyHandler) RemoveBot(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	code := lobbyCode(r)
	botID := model.PlayerID(mux.Vars(r)["playerID"])

	if err := h.bots.RemoveBotFromLobby(r.Context(), code, player.ID, botID); err != nil {
		WriteError(w, err)
		return
	}

	h.writeLobby(w, r, code)
}

// QRCode handles GET /api/v1/lobbies/{code}/qr.png.
// The image encodes the lobby's board URL so players can join from a phone.
func (h *LobbyHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	code := lobbyCode(r)

	if _, err := h.lobbyController.GetLobby(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	url := JoinURL(h.baseURL(r), code)
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr generation failed", slog.String("lobby_code", string(code)), slog.String("error", err.Error()))
		WriteError(w, apierr.NewInternalError())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// JoinURL is the link a new player follows to reach a lobby
func JoinURL(base string, code model.LobbyCode) string {
	return fmt.Sprintf("%s/api/v1/lobbies/%s/board", base, code)
}

// baseURL prefers the configured public URL, otherwise it is derived from the
// request, honouring X-Forwarded-Proto
func (h *LobbyHandler) baseURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (h *LobbyHandler) writeLobby(w http.ResponseWriter, r *http.Request, code model.LobbyCode) {
	l, err := h.lobbyController.GetLobby(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.lobbyResponse(l))
}

func (h *LobbyHandler) lobbyResponse(l *model.Lobby) response.Lobby {
	return response.LobbyFromModel(l, h.scoring.Tally(l.GameHistory))
}

func lobbyCode(r *http.Request) model.LobbyCode {
	return model.LobbyCode(strings.ToUpper(mux.Vars(r)["code"]))
}
