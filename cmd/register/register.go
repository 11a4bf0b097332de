package register

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/util/command"
)

const walletIDFlag = "wallet-id"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Registers a custodial wallet with the exchange",
		Run: func(cmd *cobra.Command, _ []string) {
			walletID, _ := cmd.Flags().GetString(walletIDFlag)

			command.Exit(command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(),
				func(ctx context.Context, s *api.Server) error {
					registration, err := s.Account.Register(ctx, walletID)
					if err != nil {
						return err
					}

					fmt.Printf("address:    %s\n", registration.Address)
					fmt.Printf("account id: %s\n", registration.AccountID)
					return nil
				}))
		},
	}

	cmd.Flags().String(walletIDFlag, "", "Custody wallet ID to register")
	_ = cmd.MarkFlagRequired(walletIDFlag)

	return cmd
}
