package cli

import (
	"github.com/spf13/cobra"

	"github.com/jasonknight/anthropide-sub001/internal/gateway"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect session documents on the gateway",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <project>",
		Short: "Print a project's session document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := gateway.NewClient(app.cfg.GatewayURL)
			doc, err := c.LoadSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, doc)
		},
	})

	return cmd
}
