package command

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/api/router"
	"github/starchild/orderly-bridge/internal/config"
)

// NewSubcommandGroup returns a command that only groups its subcommands.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use: use,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	cmd.AddCommand(subcommands...)
	return cmd
}

// ConfigureLogger applies the logger configuration globally.
func ConfigureLogger(cfg config.Logger) {
	zerolog.SetGlobalLevel(cfg.Level)
	if cfg.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = time.RFC3339
		}))
	}
}

// WithServer initializes a fully wired server, hands it to the closure and
// shuts it down afterwards. CLI operations run through the same component
// wiring as the HTTP server.
func WithServer(ctx context.Context, cfg config.Server, closure func(ctx context.Context, s *api.Server) error) error {
	ConfigureLogger(cfg.Logger)

	s := api.NewServer(cfg)
	if err := s.InitComponents(); err != nil {
		return err
	}
	router.Init(s)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shut down server")
		}
	}()

	return closure(ctx, s)
}

// Exit logs err and terminates with a non-zero code when it is non-nil.
func Exit(err error) {
	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
