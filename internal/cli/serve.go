package cli

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jasonknight/anthropide-sub001/internal/server"
	"github.com/jasonknight/anthropide-sub001/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var dbPath string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the session persistence gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger()
			if debug {
				log = log.Level(zerolog.DebugLevel)
			} else {
				log = log.Level(zerolog.InfoLevel)
			}

			if addr == "" {
				addr = app.cfg.ListenAddr
			}
			if dbPath == "" {
				dbPath = app.cfg.DBPath
			}
			if strings.TrimSpace(dbPath) == "" {
				st := &store.Store{}
				p, err := st.DefaultDBPath()
				if err != nil {
					return err
				}
				if err := st.Ensure(); err != nil {
					return err
				}
				dbPath = p
			}

			st, err := server.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			log.Info().Str("db", dbPath).Msg("store opened")
			return server.New(st, log).ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from ANTHROPIDE_ADDR)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to sqlite database (default from ANTHROPIDE_DB)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable request-level logging")
	return cmd
}
