package redis

import (
	"strings"

	"github.com/mcoot/codenames-go/internal/model"
)

// Every key lives under this namespace so one Redis can be shared
const keyPrefix = "codenames"

func key(parts ...string) string {
	return keyPrefix + ":" + strings.Join(parts, ":")
}

// Players, accounts and the username index
func playerKey(id model.PlayerID) string { return key("player", string(id)) }
func registeredPlayerKey(id model.PlayerID) string { return key("registered_player", string(id)) }
func usernameIndexKey(username string) string { return key("idx", "username", username) }

// Lobbies and the word pool
func lobbyKey(code model.LobbyCode) string { return key("lobby", string(code)) }
func wordPoolKey() string { return key("word_pool") }

// Session snapshot, its change channel and its seat HASH (player_id -> role)
func sessionKey(id model.SessionID) string { return key("session", string(id)) }
func sessionChannel(id model.SessionID) string { return key("session", string(id), "changes") }
func rolesKey(id model.SessionID) string { return key("roles", string(id)) }
