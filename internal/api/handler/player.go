package handler

import (
	"net/http"

	"github.com/mcoot/codenames-go/internal/api/middleware"
	"github.com/mcoot/codenames-go/internal/api/request"
	"github.com/mcoot/codenames-go/internal/api/response"
	"github.com/mcoot/codenames-go/internal/services/auth"
)

// PlayerHandler issues identities at the edge of the system
type PlayerHandler struct {
	authService auth.ServiceInterface
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService auth.ServiceInterface) *PlayerHandler {
	return &PlayerHandler{authService: authService}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if missing := firstMissing("display_name", req.DisplayName); missing != "" {
		WriteError(w, NewInvalidRequestError(missing+" is required"))
		return
	}

	session, err := h.authService.CreateGuestPlayer(r.Context(), req.DisplayName)
	h.issue(w, http.StatusCreated, session, err)
}

// Register handles POST /api/v1/players/register. The service falls back to
// the username when no display name is sent.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if missing := firstMissing("username", req.Username, "password", req.Password); missing != "" {
		WriteError(w, NewInvalidRequestError(missing+" is required"))
		return
	}

	session, err := h.authService.RegisterPlayer(r.Context(), req.Username, req.Password, req.DisplayName)
	h.issue(w, http.StatusCreated, session, err)
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if missing := firstMissing("username", req.Username, "password", req.Password); missing != "" {
		WriteError(w, NewInvalidRequestError(missing+" is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	h.issue(w, http.StatusOK, session, err)
}

// Logout handles DELETE /api/v1/players/me/session. The token stops working
// immediately; the player record stays.
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.InvalidateSession(middleware.GetToken(r.Context()))
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.PlayerFromModel(middleware.MustGetPlayer(r.Context())))
}

func (h *PlayerHandler) issue(w http.ResponseWriter, status int, session *auth.Session, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, status, response.AuthResponseFromSession(session))
}

// firstMissing takes name/value pairs and returns the first name whose
// value is empty
func firstMissing(pairs ...string) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return pairs[i]
		}
	}
	return ""
}
