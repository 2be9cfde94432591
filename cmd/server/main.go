package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mcoot/codenames-go/internal/api"
	"github.com/mcoot/codenames-go/internal/factory"
	"github.com/mcoot/codenames-go/internal/services/game"
	redisstorage "github.com/mcoot/codenames-go/internal/storage/redis"
)

func main() {
	// A .env file is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "could not load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCmd(&Config{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *Config) error {
	level, _ := cfg.level()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		WordListPath: cfg.wordList,
		GameConfig:   game.Config{IdleTimeout: cfg.idleTimeout},
		Logger:       logger,
		StorageType:  cfg.storage,
	}
	if cfg.storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.redisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		AuthService:     app.AuthService,
		LobbyController: app.LobbyController,
		GameController:  app.GameController,
		Bots:            app.Bots,
		Scoring:         app.Scoring,
		WordPool:        app.WordPool,
		Feeds:           app.Feeds,
		PublicURL:       cfg.publicURL,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.host
	serverConfig.Port = cfg.port
	server := api.NewServer(router, serverConfig, logger)
	if err := server.Listen(); err != nil {
		return err
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go app.Feeds.RunJanitor(janitorCtx, cfg.janitorPeriod)
	go app.AuthService.RunSweeper(janitorCtx, cfg.janitorPeriod)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		// Feed streams only end once their hubs stop
		app.Feeds.Close()
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
