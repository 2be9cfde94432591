package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/codenames-go/internal/api/apierr"
	"github.com/mcoot/codenames-go/internal/api/handler"
	apimiddleware "github.com/mcoot/codenames-go/internal/api/middleware"
	"github.com/mcoot/codenames-go/internal/api/response"
	"github.com/mcoot/codenames-go/internal/feed"
	"github.com/mcoot/codenames-go/internal/middleware"
	"github.com/mcoot/codenames-go/internal/services/auth"
	"github.com/mcoot/codenames-go/internal/services/bot"
	"github.com/mcoot/codenames-go/internal/services/game"
	"github.com/mcoot/codenames-go/internal/services/lobby"
	"github.com/mcoot/codenames-go/internal/services/scoring"
	"github.com/mcoot/codenames-go/internal/services/wordpool"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	AuthService     auth.ServiceInterface
	LobbyController lobby.ControllerInterface
	GameController  game.ControllerInterface
	Bots            bot.ServiceInterface
	Scoring         scoring.ServiceInterface // Defaults to scoring.New()
	WordPool        wordpool.ServiceInterface
	Feeds           *feed.Manager
	PublicURL       string // Base URL used in lobby join links
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	scoringService := cfg.Scoring
	if scoringService == nil {
		scoringService = scoring.New()
	}

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	lobbyHandler := handler.NewLobbyHandler(cfg.LobbyController, cfg.Bots, scoringService, cfg.PublicURL, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.LobbyController, cfg.GameController, cfg.Bots, cfg.Feeds, cfg.Logger)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := apimiddleware.OptionalAuth(cfg.AuthService)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequestID)
	api.Use(middleware.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	}))
	api.Use(middleware.Logging(cfg.Logger))

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	playerProtected.HandleFunc("/me/session", playerHandler.Logout).Methods(http.MethodDelete)

	// Spectator routes; reachable from a join link without an account
	public := api.PathPrefix("/lobbies").Subrouter()
	public.Use(optionalAuthMiddleware)
	public.HandleFunc("/{code}/qr.png", lobbyHandler.QRCode).Methods(http.MethodGet)
	public.HandleFunc("/{code}/board", gameHandler.Board).Methods(http.MethodGet)

	// Lobby routes
	lobbies := api.PathPrefix("/lobbies").Subrouter()
	lobbies.Use(authMiddleware)
	lobbies.HandleFunc("", lobbyHandler.Create).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}", lobbyHandler.Get).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/join", lobbyHandler.Join).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/leave", lobbyHandler.Leave).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/role", lobbyHandler.SelectRole).Methods(http.MethodPut)
	lobbies.HandleFunc("/{code}/transfer-host", lobbyHandler.TransferHost).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/bots", lobbyHandler.AddBot).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/bots/{playerID}", lobbyHandler.RemoveBot).Methods(http.MethodDelete)

	// Game routes
	lobbies.HandleFunc("/{code}/game", gameHandler.Start).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game", gameHandler.Get).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/game", gameHandler.Abandon).Methods(http.MethodDelete)
	lobbies.HandleFunc("/{code}/game/clue", gameHandler.Clue).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/select", gameHandler.Select).Methods(http.MethodPost)
	lobbies.HandleFunc("/{code}/game/end-turn", gameHandler.EndTurn).Methods(http.MethodPost)

	// Change feeds
	lobbies.HandleFunc("/{code}/events", gameHandler.Events).Methods(http.MethodGet)
	lobbies.HandleFunc("/{code}/ws", gameHandler.WS).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler(cfg.WordPool)).Methods(http.MethodGet)

	return r
}

func healthHandler(words wordpool.ServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := response.Health{Status: "ok"}
		if words != nil {
			health.WordCount = words.WordCount()
			if !words.IsLoaded() {
				health.Status = "degraded"
			}
		}
		response.JSON(w, http.StatusOK, health)
	}
}
