package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/codenames-go/internal/dependencies/clock"
	"github.com/mcoot/codenames-go/internal/dependencies/random"
	"github.com/mcoot/codenames-go/internal/feed"
	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/auth"
	"github.com/mcoot/codenames-go/internal/services/board"
	"github.com/mcoot/codenames-go/internal/services/bot"
	"github.com/mcoot/codenames-go/internal/services/game"
	"github.com/mcoot/codenames-go/internal/services/lobby"
	"github.com/mcoot/codenames-go/internal/services/scoring"
	"github.com/mcoot/codenames-go/internal/services/wordpool"
	"github.com/mcoot/codenames-go/internal/storage"
	"github.com/mcoot/codenames-go/internal/storage/memory"
	redisstorage "github.com/mcoot/codenames-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	WordPool        *wordpool.Service
	Generator       *board.Generator
	GameController  *game.Controller
	LobbyController *lobby.Controller
	AuthService     *auth.Service
	Bots            *bot.Service
	Scoring         *scoring.Service
	Feeds           *feed.Manager

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// WordListPath is a word list file, one word per line (optional).
	// If empty, the word pool persisted in storage is used, falling back
	// to the built-in list
	WordListPath string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// GameConfig holds session actor settings (optional)
	GameConfig game.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired and the word
// pool loaded
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closers []io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	gameCfg := cfg.GameConfig
	if gameCfg.IdleTimeout == 0 {
		gameCfg = game.DefaultConfig()
	}

	app := newWithDependencies(store, clock.New(), random.New(), authCfg, gameCfg, logger)
	app.closers = closers

	if err := app.loadWordPool(ctx, cfg.WordListPath); err != nil {
		_ = app.Close()
		return nil, err
	}

	logger.Info("application ready",
		slog.String("storage", storageType),
		slog.Int("word_count", app.WordPool.WordCount()),
	)
	return app, nil
}

func (a *App) loadWordPool(ctx context.Context, path string) error {
	if path != "" {
		if err := a.WordPool.LoadFromFile(ctx, path); err != nil {
			return fmt.Errorf("load word list: %w", err)
		}
		return nil
	}

	err := a.WordPool.LoadFromStorage(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrWordPoolNotLoaded) {
		return fmt.Errorf("load stored word pool: %w", err)
	}
	return a.WordPool.LoadDefault(ctx)
}

// Close stops background work and releases connections
func (a *App) Close() error {
	a.Feeds.Close()
	a.GameController.Close()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	gameCfg game.Config,
	logger *slog.Logger,
) *App {
	words := wordpool.New(store, logger)
	generator := board.New(rnd)
	gameController := game.NewController(store, clk, logger, gameCfg)
	lobbyController := lobby.NewController(store, gameController, generator, words, clk, rnd, logger)
	authService := auth.New(store, clk, logger, authCfg)
	strategies := map[string]bot.Strategy{
		bot.RandomStrategyName: bot.NewRandomStrategy(rnd),
	}
	bots := bot.NewService(store, lobbyController, gameController, strategies, clk, rnd, logger)
	feeds := feed.NewManager(store, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		WordPool:        words,
		Generator:       generator,
		GameController:  gameController,
		LobbyController: lobbyController,
		AuthService:     authService,
		Bots:            bots,
		Scoring:         scoring.New(),
		Feeds:           feeds,
	}
}
