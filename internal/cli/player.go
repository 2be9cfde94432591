package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mcoot/codenames-go/internal/api/request"
	"github.com/mcoot/codenames-go/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Create a player or sign in",
	}

	cmd.AddCommand(
		newPlayerGuestCmd(),
		newPlayerRegisterCmd(),
		newPlayerLoginCmd(),
		newPlayerMeCmd(),
		newPlayerLogoutCmd(),
	)

	return cmd
}

// authenticate posts to an auth endpoint and keeps the issued token
func authenticate(path string, body any) error {
	var result response.AuthResponse
	if err := client.Post(path, body, &result); err != nil {
		return err
	}
	if err := cfg.SaveToken(result.SessionToken); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	NewOutput(cfg.Output).Print(result)
	return nil
}

func newPlayerGuestCmd() *cobra.Command {
	var req request.CreateGuestRequest

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Play as a guest under a display name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate("/api/v1/players/guest", req)
		},
	}

	cmd.Flags().StringVar(&req.DisplayName, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// credentialFlags binds --user and --pass, both required
func credentialFlags(cmd *cobra.Command, user, pass *string) {
	cmd.Flags().StringVar(user, "user", "", "Username (required)")
	cmd.Flags().StringVar(pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")
}

func newPlayerRegisterCmd() *cobra.Command {
	var req request.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account that keeps its identity across sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate("/api/v1/players/register", req)
		},
	}

	cmd.Flags().StringVar(&req.DisplayName, "name", "", "Display name (defaults to the username)")
	credentialFlags(cmd, &req.Username, &req.Password)

	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var req request.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return authenticate("/api/v1/players/login", req)
		},
	}

	credentialFlags(cmd, &req.Username, &req.Password)

	return cmd
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show who the saved token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Player
			if err := client.Get("/api/v1/players/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayerLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the saved token and forget it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("not signed in")
			}
			if err := client.Do(http.MethodDelete, "/api/v1/players/me/session", nil, nil); err != nil {
				return err
			}
			if err := cfg.ForgetToken(); err != nil {
				return fmt.Errorf("remove token: %w", err)
			}

			NewOutput(cfg.Output).PrintMessage("Signed out")
			return nil
		},
	}
}
