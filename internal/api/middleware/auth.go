package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/codenames-go/internal/api/apierr"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/auth"
)

type (
	playerContextKey struct{}
	tokenContextKey  struct{}
)

// TokenQueryParam carries the session token for clients that cannot set
// headers, such as browser EventSource and WebSocket connections
const TokenQueryParam = "token"

// Auth rejects requests without a valid session token
func Auth(authService auth.ServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := authenticate(authService, r)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

// OptionalAuth attaches the player when a valid token is sent and lets
// anonymous requests through as spectators
func OptionalAuth(authService auth.ServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, err := authenticate(authService, r); err == nil {
				r = r.WithContext(withSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(authService auth.ServiceInterface, r *http.Request) (*auth.Session, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, apierr.NewUnauthorizedError()
	}
	return authService.ValidateSession(token)
}

// bearerToken reads the Authorization header, then the query string
func bearerToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get(TokenQueryParam)
}

func withSession(ctx context.Context, session *auth.Session) context.Context {
	player := session.Player
	ctx = context.WithValue(ctx, tokenContextKey{}, session.Token)
	return context.WithValue(ctx, playerContextKey{}, &player)
}

// GetToken returns the session token the request authenticated with
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// GetPlayer returns the authenticated player, or nil for anonymous requests
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey{}).(*model.Player)
	return player
}

// MustGetPlayer returns the authenticated player. Handlers behind Auth
// only; it panics otherwise.
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("middleware: no player in context")
	}
	return player
}
