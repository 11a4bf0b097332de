package orderlykey

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/util/command"
)

const (
	walletIDFlag = "wallet-id"
	scopeFlag    = "scope"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orderly-key",
		Short: "Grants a fresh exchange API key to a wallet",
		Long: `Generates a new ed25519 API key pair, signs the grant with the
custodied wallet key and announces it to the exchange. The secret seed is
printed once and never stored.`,
		Run: func(cmd *cobra.Command, _ []string) {
			walletID, _ := cmd.Flags().GetString(walletIDFlag)
			scope, _ := cmd.Flags().GetString(scopeFlag)

			command.Exit(command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(),
				func(ctx context.Context, s *api.Server) error {
					grant, err := s.Account.GrantKey(ctx, walletID, scope, 0)
					if err != nil {
						return err
					}

					fmt.Printf("account id:     %s\n", grant.AccountID)
					fmt.Printf("orderly key:    %s\n", grant.KeyPair.PublicKey)
					fmt.Printf("orderly secret: %s\n", grant.KeyPair.SeedHex())
					fmt.Printf("scope:          %s\n", grant.Scope)
					fmt.Printf("expires:        %s\n", grant.Expiration.Format(time.RFC3339))
					return nil
				}))
		},
	}

	cmd.Flags().String(walletIDFlag, "", "Custody wallet ID")
	cmd.Flags().String(scopeFlag, "", "Key scope (default read,trading)")
	_ = cmd.MarkFlagRequired(walletIDFlag)

	return cmd
}
