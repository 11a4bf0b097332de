package withdraw

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/withdraw"
	"github/starchild/orderly-bridge/internal/util/command"
)

const (
	walletIDFlag = "wallet-id"
	amountFlag   = "amount"
	tokenFlag    = "token"
	receiverFlag = "receiver"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("withdraw",
		newRequest(),
		newSettlePnl(),
	)
}

func newRequest() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Withdraws funds from the exchange back to a chain address",
		Run: func(cmd *cobra.Command, _ []string) {
			walletID, _ := cmd.Flags().GetString(walletIDFlag)
			rawAmount, _ := cmd.Flags().GetString(amountFlag)
			token, _ := cmd.Flags().GetString(tokenFlag)
			receiver, _ := cmd.Flags().GetString(receiverFlag)

			amount, err := decimal.NewFromString(rawAmount)
			if err != nil {
				command.Exit(errors.Wrapf(orderly.ErrInvalidAmount, "amount %q is not a decimal number", rawAmount))
			}

			command.Exit(command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(),
				func(ctx context.Context, s *api.Server) error {
					if s.Credentials == nil {
						return errors.New("ORDERLY_ACCOUNT_ID and ORDERLY_SECRET must be configured")
					}

					result, err := s.Withdraw.Withdraw(ctx, s.Credentials, &withdraw.Request{
						WalletID: walletID,
						Token:    token,
						Amount:   amount,
						Receiver: receiver,
					})
					if err != nil {
						return err
					}

					fmt.Printf("token:          %s\n", result.Token)
					fmt.Printf("amount:         %s\n", result.Amount)
					fmt.Printf("receiver:       %s\n", result.Receiver)
					fmt.Printf("withdraw nonce: %d\n", result.WithdrawNonce)
					return nil
				}))
		},
	}

	cmd.Flags().String(walletIDFlag, "", "Custody wallet ID")
	cmd.Flags().String(amountFlag, "", "Amount in whole tokens, e.g. 12.5")
	cmd.Flags().String(tokenFlag, "", "Token symbol (default USDC)")
	cmd.Flags().String(receiverFlag, "", "Receiver address (default the wallet's own address)")
	_ = cmd.MarkFlagRequired(walletIDFlag)
	_ = cmd.MarkFlagRequired(amountFlag)

	return cmd
}

func newSettlePnl() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle-pnl",
		Short: "Settles unrealized PnL into the withdrawable balance",
		Run: func(cmd *cobra.Command, _ []string) {
			walletID, _ := cmd.Flags().GetString(walletIDFlag)

			command.Exit(command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(),
				func(ctx context.Context, s *api.Server) error {
					if s.Credentials == nil {
						return errors.New("ORDERLY_ACCOUNT_ID and ORDERLY_SECRET must be configured")
					}

					raw, err := s.Withdraw.SettlePnl(ctx, s.Credentials, walletID)
					if err != nil {
						return err
					}

					fmt.Printf("settlement accepted: %s\n", raw)
					return nil
				}))
		},
	}

	cmd.Flags().String(walletIDFlag, "", "Custody wallet ID")
	_ = cmd.MarkFlagRequired(walletIDFlag)

	return cmd
}
