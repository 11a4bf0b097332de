package deposit

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/deposit"
	"github/starchild/orderly-bridge/internal/util/command"
)

const (
	walletIDFlag   = "wallet-id"
	amountFlag     = "amount"
	chainIDFlag    = "chain-id"
	resumeStepFlag = "resume-step"
	resumeTxFlag   = "resume-tx"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposits USDC from a custodial wallet into the exchange vault",
		Long: `Moves USDC on-chain into the exchange vault, approving first when
the standing allowance is short. An interrupted run prints the step and
transaction hash to resume from; pass them back with --resume-step and
--resume-tx to wait on the same transaction instead of broadcasting again.`,
		Run: func(cmd *cobra.Command, _ []string) {
			command.Exit(runDeposit(cmd))
		},
	}

	cmd.Flags().String(walletIDFlag, "", "Custody wallet ID")
	cmd.Flags().String(amountFlag, "", "Amount in whole USDC, e.g. 12.5")
	cmd.Flags().Int64(chainIDFlag, 0, "Chain ID (default from ORDERLY_CHAIN_ID)")
	cmd.Flags().String(resumeStepFlag, "", "Step to resume an interrupted deposit from")
	cmd.Flags().String(resumeTxFlag, "", "Transaction hash to resume against")
	_ = cmd.MarkFlagRequired(walletIDFlag)
	_ = cmd.MarkFlagRequired(amountFlag)

	return cmd
}

func runDeposit(cmd *cobra.Command) error {
	walletID, _ := cmd.Flags().GetString(walletIDFlag)
	rawAmount, _ := cmd.Flags().GetString(amountFlag)
	chainID, _ := cmd.Flags().GetInt64(chainIDFlag)
	resumeStep, _ := cmd.Flags().GetString(resumeStepFlag)
	resumeTx, _ := cmd.Flags().GetString(resumeTxFlag)

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return errors.Wrapf(orderly.ErrInvalidAmount, "amount %q is not a decimal number", rawAmount)
	}

	req := &deposit.Request{
		WalletID: walletID,
		ChainID:  chainID,
		Amount:   amount,
	}
	if resumeStep != "" || resumeTx != "" {
		if resumeStep == "" || resumeTx == "" {
			return errors.Wrap(orderly.ErrInvalidArgument, "resume requires both --resume-step and --resume-tx")
		}
		req.Resume = &deposit.ResumePoint{
			Step:   deposit.Step(resumeStep),
			TxHash: common.HexToHash(resumeTx),
		}
	}

	return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(),
		func(ctx context.Context, s *api.Server) error {
			if req.ChainID == 0 {
				req.ChainID = s.Config.Orderly.ChainID
			}

			result, err := s.Deposit.Deposit(ctx, req)
			if err != nil {
				if result != nil && result.Step != deposit.StepCheckBalance {
					fmt.Printf("interrupted at step: %s\n", result.Step)
					if result.ApproveTxHash != (common.Hash{}) {
						fmt.Printf("approve tx: %s\n", result.ApproveTxHash.Hex())
					}
					if result.DepositTxHash != (common.Hash{}) {
						fmt.Printf("deposit tx: %s\n", result.DepositTxHash.Hex())
					}
				}
				return err
			}

			fmt.Printf("account id: %s\n", result.AccountID.Hex())
			fmt.Printf("amount:     %s units\n", result.Amount)
			fmt.Printf("fee:        %s wei\n", result.Fee)
			if result.ApproveTxHash != (common.Hash{}) {
				fmt.Printf("approve tx: %s\n", result.ApproveTxHash.Hex())
			}
			fmt.Printf("deposit tx: %s\n", result.DepositTxHash.Hex())
			return nil
		})
}
