package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jasonknight/anthropide-sub001/internal/config"
	"github.com/jasonknight/anthropide-sub001/internal/format"
	"github.com/jasonknight/anthropide-sub001/internal/tui"
)

type App struct {
	GatewayURL string
	PrettyJSON bool

	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "anthropide",
		Short:        "Terminal editor for LLM session documents",
		SilenceUsage: true,
		Example: `
  # Start the interactive editor
  anthropide

  # Run the persistence gateway
  anthropide serve

  # Scriptable commands
  anthropide projects list
  anthropide sessions show myproject`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return tui.Run(app.cfg)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		app.cfg = config.Load()
		if app.GatewayURL != "" {
			app.cfg.GatewayURL = app.GatewayURL
		}
	}

	cmd.PersistentFlags().StringVar(&app.GatewayURL, "gateway", envOr("ANTHROPIDE_GATEWAY", ""), "Gateway base URL")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newSessionsCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}
