package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/codenames-go/internal/api/response"
	"github.com/mcoot/codenames-go/internal/model"
)

func newLobbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lobby",
		Short: "Lobby management commands",
	}

	cmd.AddCommand(newLobbyCreateCmd())
	cmd.AddCommand(newLobbyGetCmd())
	cmd.AddCommand(newLobbyJoinCmd())
	cmd.AddCommand(newLobbyLeaveCmd())
	cmd.AddCommand(newLobbyRoleCmd())
	cmd.AddCommand(newLobbyTransferHostCmd())
	cmd.AddCommand(newLobbyQRCmd())
	cmd.AddCommand(newLobbyAddBotCmd())
	cmd.AddCommand(newLobbyRemoveBotCmd())

	return cmd
}

func lobbyPath(code string, suffix ...string) string {
	return "/api/v1/lobbies/" + strings.ToUpper(code) + strings.Join(suffix, "")
}

func newLobbyCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new lobby",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby

			if err := client.Post("/api/v1/lobbies", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLobbyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get lobby details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby

			if err := client.Get(lobbyPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLobbyJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby

			if err := client.Post(lobbyPath(args[0], "/join"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLobbyLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <code>",
		Short: "Leave a lobby",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			if err := client.Post(lobbyPath(code, "/leave"), nil, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Left lobby %s", strings.ToUpper(code)))
			return nil
		},
	}
}

func roleNames() []string {
	roles := make([]string, 0, 4)
	for _, r := range model.AllRoles() {
		roles = append(roles, string(r))
	}
	return roles
}

// normalizeRole accepts red-spymaster as well as red_spymaster
func normalizeRole(arg string) string {
	return strings.ToLower(strings.ReplaceAll(arg, "-", "_"))
}

func newLobbyRoleCmd() *cobra.Command {
	roles := roleNames()

	return &cobra.Command{
		Use:   "role <code> [role]",
		Short: "Take a seat, or leave your seat when no role is given",
		Long: fmt.Sprintf(`Take a seat at the table. Roles: %s.

Seats are fixed while a game is running.`, strings.Join(roles, ", ")),
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: roles,
		RunE: func(cmd *cobra.Command, args []string) error {
			role := ""
			if len(args) == 2 {
				role = normalizeRole(args[1])
			}

			var result response.Lobby
			if err := client.Put(lobbyPath(args[0], "/role"), map[string]string{"role": role}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLobbyTransferHostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-host <code> <player-id>",
		Short: "Hand the host role to another member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby

			req := map[string]string{"new_host_id": args[1]}
			if err := client.Post(lobbyPath(args[0], "/transfer-host"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLobbyQRCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Save the lobby's join QR code as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			png, _, err := client.Raw(lobbyPath(code, "/qr.png"))
			if err != nil {
				return err
			}

			if file == "" {
				file = code + ".png"
			}
			if err := os.WriteFile(file, png, 0o644); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("QR code written to %s", file))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Output file (default: <code>.png)")

	return cmd
}

func newLobbyAddBotCmd() *cobra.Command {
	var strategy string
	roles := roleNames()

	cmd := &cobra.Command{
		Use:   "add-bot <code> <role>",
		Short: "Seat a bot (host only)",
		Long: fmt.Sprintf(`Seat a server-driven bot. Roles: %s.

Bots play as soon as it is their turn. A human sharing the seat plays instead.`, strings.Join(roles, ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: roles,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby

			req := map[string]string{"role": normalizeRole(args[1])}
			if strategy != "" {
				req["strategy"] = strategy
			}
			if err := client.Post(lobbyPath(args[0], "/bots"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Bot strategy (default: random)")

	return cmd
}

func newLobbyRemoveBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-bot <code> <player-id>",
		Short: "Remove a bot (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Lobby

			if err := client.Do(http.MethodDelete, lobbyPath(args[0], "/bots/"+args[1]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
