package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cngame",
		Short: "Play codenames from the terminal",
		Long: `cngame talks to a codenames server over its JSON API.

Create a player, gather a lobby, take seats (or fill them with bots) and
play. "watch" follows a running game live.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if err := loaded.LoadToken(); err != nil {
				return err
			}
			cfg = loaded

			client = NewClient(cfg.ServerURL, cfg.Token, requestLogger(cfg.Verbose))
			return nil
		},
		SilenceUsage: true,
	}

	registerFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newPlayerCmd(),
		newLobbyCmd(),
		newGameCmd(),
		newEventsCmd(),
		newWatchCmd(),
		newHealthCmd(),
	)

	return rootCmd
}

// requestLogger writes debug request lines to stderr when verbose
func requestLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
