package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/codenames-go/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameClueCmd())
	cmd.AddCommand(newGameSelectCmd())
	cmd.AddCommand(newGameEndTurnCmd())
	cmd.AddCommand(newGameAbandonCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start a new game in the lobby (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gameAction(lobbyPath(args[0], "/game"), nil)
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameState

			if err := client.Get(lobbyPath(args[0], "/game"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameClueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clue <code> <word> <number>",
		Short: "Give a clue (spymaster only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid number: %w", err)
			}

			req := map[string]any{"text": args[1], "number": number}
			return gameAction(lobbyPath(args[0], "/game/clue"), req)
		},
	}
}

func newGameSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <code> <word...>",
		Short: "Select a word on the board (operative only)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Board words may contain spaces
			req := map[string]string{"word": strings.Join(args[1:], " ")}
			return gameAction(lobbyPath(args[0], "/game/select"), req)
		},
	}
}

func newGameEndTurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end-turn <code>",
		Short: "Stop guessing and pass the turn (operative only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gameAction(lobbyPath(args[0], "/game/end-turn"), nil)
		},
	}
}

func newGameAbandonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <code>",
		Short: "Abandon the current game (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(lobbyPath(args[0], "/game")); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Game abandoned")
			return nil
		},
	}
}

func gameAction(path string, req any) error {
	var result response.GameState
	if err := client.Post(path, req, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}
