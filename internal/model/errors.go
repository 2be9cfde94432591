package model

import "errors"

// Common errors used across the application
var (
	// Action errors, reported to the acting player only
	ErrSessionTerminal   = errors.New("session has already finished")
	ErrNotYourTurn       = errors.New("not this role's turn")
	ErrWrongRole         = errors.New("role may not perform this action")
	ErrInvalidClueNumber = errors.New("clue number must not be negative")
	ErrEmptyClue         = errors.New("clue text must not be empty")
	ErrUnknownWord       = errors.New("word is not on the board")
	ErrAlreadyRevealed   = errors.New("word has already been revealed")
	ErrUnknownAction     = errors.New("unknown action")

	// Session errors
	ErrSessionNotFound      = errors.New("session not found")
	ErrInsufficientWordPool = errors.New("word pool has fewer than 25 unique words")
	ErrWrite                = errors.New("session write failed")
	ErrSubscriptionLost     = errors.New("session subscription lost")
	ErrControllerClosed     = errors.New("game controller is closed")

	// Role errors
	ErrNoRole      = errors.New("player has no role in this session")
	ErrInvalidRole = errors.New("invalid role")
	ErrRoleTaken   = errors.New("role is already taken")

	// Player errors
	ErrPlayerNotFound     = errors.New("player not found")
	ErrInvalidDisplayName = errors.New("display name must be 1 to 32 characters")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid or expired session")

	// Lobby errors
	ErrLobbyNotFound       = errors.New("lobby not found")
	ErrAlreadyInLobby      = errors.New("player is already in lobby")
	ErrNotInLobby          = errors.New("player is not in lobby")
	ErrNotHost             = errors.New("player is not the host")
	ErrGameInProgress      = errors.New("game is in progress")
	ErrNoGameInProgress    = errors.New("no game in progress")
	ErrInsufficientPlayers = errors.New("each team needs a spymaster and an operative")
	ErrNotBot              = errors.New("player is not a bot")
	ErrUnknownStrategy     = errors.New("unknown bot strategy")
	ErrBotCannotHost       = errors.New("a bot cannot host a lobby")

	// Word pool errors
	ErrWordPoolNotLoaded = errors.New("word pool not loaded")
)

// IsActionError returns true for errors caused by an illegal action
func IsActionError(err error) bool {
	for _, target := range []error{
		ErrSessionTerminal, ErrNotYourTurn, ErrWrongRole, ErrInvalidClueNumber,
		ErrEmptyClue, ErrUnknownWord, ErrAlreadyRevealed, ErrUnknownAction,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
