package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/codenames-go/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the server is up and has a word pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			var health response.Health
			if err := client.Get("/api/v1/health", &health); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(health)
			return nil
		},
	}
}
