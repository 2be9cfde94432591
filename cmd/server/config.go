package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/codenames-go/internal/factory"
)

// Config holds server settings from flags and CODENAMES_* env vars
type Config struct {
	host          string
	port          int
	storage       string
	redisURL      string
	wordList      string
	publicURL     string
	logLevel      string
	idleTimeout   time.Duration
	janitorPeriod time.Duration
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.redisURL == "" {
			return errors.New("--redis-url is required with --storage=redis")
		}
	default:
		return fmt.Errorf("unknown storage %q: want memory or redis", c.storage)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q", c.logLevel)
	}
	return level, nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CODENAMES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "codenames-server",
		Short: "Serve codenames lobbies, games and live change feeds over HTTP.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.host, "host", "b", "", "address to bind to (env: CODENAMES_HOST)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CODENAMES_PORT)")
	fs.StringVar(&cfg.storage, "storage", factory.StorageTypeMemory, "storage backend: memory or redis (env: CODENAMES_STORAGE)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis connection URL (env: CODENAMES_REDIS_URL)")
	fs.StringVar(&cfg.wordList, "word-list", "", "word list file, one word per line (env: CODENAMES_WORD_LIST)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "base URL used in lobby join links (env: CODENAMES_PUBLIC_URL)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "debug, info, warn or error (env: CODENAMES_LOG_LEVEL)")
	fs.DurationVar(&cfg.idleTimeout, "idle-timeout", 5*time.Minute, "time before an idle session actor is stopped (env: CODENAMES_IDLE_TIMEOUT)")
	fs.DurationVar(&cfg.janitorPeriod, "janitor-period", time.Minute, "how often empty change feed hubs are removed (env: CODENAMES_JANITOR_PERIOD)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
