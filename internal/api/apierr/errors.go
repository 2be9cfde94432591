package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/codenames-go/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeSessionTerminal     = "SESSION_TERMINAL"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeWrongRole           = "WRONG_ROLE"
	CodeInvalidClueNumber   = "INVALID_CLUE_NUMBER"
	CodeEmptyClue           = "EMPTY_CLUE"
	CodeUnknownWord         = "UNKNOWN_WORD"
	CodeAlreadyRevealed     = "ALREADY_REVEALED"
	CodeNoRole              = "NO_ROLE"
	CodeInvalidRole         = "INVALID_ROLE"
	CodeRoleTaken           = "ROLE_TAKEN"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeWordPool            = "INSUFFICIENT_WORD_POOL"
	CodeWriteFailed         = "WRITE_FAILED"
	CodeNotHost             = "NOT_HOST"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeLobbyNotFound       = "LOBBY_NOT_FOUND"
	CodeAlreadyInLobby      = "ALREADY_IN_LOBBY"
	CodeNotInLobby          = "NOT_IN_LOBBY"
	CodeGameInProgress      = "GAME_IN_PROGRESS"
	CodeNoGameInProgress    = "NO_GAME_IN_PROGRESS"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeNotBot              = "NOT_BOT"
	CodeUnknownStrategy     = "UNKNOWN_STRATEGY"
	CodeBotCannotHost       = "BOT_CANNOT_HOST"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

type mapping struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins
var mappings = []mapping{
	// Action errors
	{model.ErrSessionTerminal, http.StatusConflict, CodeSessionTerminal},
	{model.ErrNotYourTurn, http.StatusConflict, CodeNotYourTurn},
	{model.ErrWrongRole, http.StatusForbidden, CodeWrongRole},
	{model.ErrInvalidClueNumber, http.StatusBadRequest, CodeInvalidClueNumber},
	{model.ErrEmptyClue, http.StatusBadRequest, CodeEmptyClue},
	{model.ErrUnknownWord, http.StatusBadRequest, CodeUnknownWord},
	{model.ErrAlreadyRevealed, http.StatusConflict, CodeAlreadyRevealed},
	{model.ErrUnknownAction, http.StatusBadRequest, CodeInvalidRequest},

	// Session and role errors
	{model.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
	{model.ErrInsufficientWordPool, http.StatusServiceUnavailable, CodeWordPool},
	{model.ErrWordPoolNotLoaded, http.StatusServiceUnavailable, CodeWordPool},
	{model.ErrWrite, http.StatusServiceUnavailable, CodeWriteFailed},
	{model.ErrNoRole, http.StatusForbidden, CodeNoRole},
	{model.ErrInvalidRole, http.StatusBadRequest, CodeInvalidRole},
	{model.ErrRoleTaken, http.StatusConflict, CodeRoleTaken},

	// Lobby errors
	{model.ErrLobbyNotFound, http.StatusNotFound, CodeLobbyNotFound},
	{model.ErrAlreadyInLobby, http.StatusConflict, CodeAlreadyInLobby},
	{model.ErrNotInLobby, http.StatusNotFound, CodeNotInLobby},
	{model.ErrNotHost, http.StatusForbidden, CodeNotHost},
	{model.ErrGameInProgress, http.StatusConflict, CodeGameInProgress},
	{model.ErrNoGameInProgress, http.StatusNotFound, CodeNoGameInProgress},
	{model.ErrInsufficientPlayers, http.StatusConflict, CodeInsufficientPlayers},
	{model.ErrNotBot, http.StatusBadRequest, CodeNotBot},
	{model.ErrUnknownStrategy, http.StatusBadRequest, CodeUnknownStrategy},
	{model.ErrBotCannotHost, http.StatusBadRequest, CodeBotCannotHost},

	// Player errors
	{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
	{model.ErrInvalidDisplayName, http.StatusBadRequest, CodeInvalidRequest},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials},
	{model.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
	{model.ErrUsernameTaken, http.StatusConflict, CodeUsernameExists},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return &httpError{m.status, APIError{m.code, m.target.Error()}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
