package holding

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "holding",
		Short: "Prints the account's exchange-side balances",
		Run: func(cmd *cobra.Command, _ []string) {
			command.Exit(command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(),
				func(ctx context.Context, s *api.Server) error {
					if s.Credentials == nil {
						return errors.New("ORDERLY_ACCOUNT_ID and ORDERLY_SECRET must be configured")
					}

					holdings, err := s.Exchange.GetHolding(ctx, s.Credentials)
					if err != nil {
						return err
					}

					if len(holdings) == 0 {
						fmt.Println("no holdings")
						return nil
					}
					for _, h := range holdings {
						fmt.Printf("%-8s holding=%s frozen=%s\n", h.Token, h.Holding, h.Frozen)
					}
					return nil
				}))
		},
	}
}
