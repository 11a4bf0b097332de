package deposit

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github/starchild/orderly-bridge/internal/chain"
	"github/starchild/orderly-bridge/internal/custody"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/identity"
)

// Step names a stage of the deposit flow. Steps that broadcast a
// transaction record its hash in the Result, so an interrupted flow can be
// resumed against the same transaction instead of broadcasting a second one.
type Step string

const (
	StepCheckBalance    Step = "check_balance"
	StepCheckAllowance  Step = "check_allowance"
	StepApprove         Step = "approve"
	StepAwaitApproval   Step = "await_approval"
	StepVerifyAllowance Step = "verify_allowance"
	StepQuoteFee        Step = "quote_fee"
	StepSubmitDeposit   Step = "submit_deposit"
	StepAwaitDeposit    Step = "await_deposit"
	StepDone            Step = "done"
)

// ChainReader is the slice of the chain client the deposit flow reads with.
type ChainReader interface {
	TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error)
	TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	DepositFee(ctx context.Context, vault, account common.Address, depositData chain.DepositData) (*big.Int, error)
	WaitMined(ctx context.Context, txHash common.Hash, timeout time.Duration) (*types.Receipt, error)
}

// ResumePoint identifies where to pick an interrupted flow back up. TxHash
// is the transaction broadcast before the interruption; it is waited on
// again, never resubmitted.
type ResumePoint struct {
	Step   Step
	TxHash common.Hash
}

// Request describes a deposit of the chain's settlement token into the
// exchange vault.
type Request struct {
	WalletID string
	ChainID  int64
	Amount   decimal.Decimal
	Resume   *ResumePoint
}

// Result reports how far the flow got and which transactions it produced.
// On error the caller can persist Step plus the relevant hash as a
// ResumePoint.
type Result struct {
	Step          Step
	AccountID     common.Hash
	Amount        *big.Int
	Fee           *big.Int
	ApproveTxHash common.Hash
	DepositTxHash common.Hash
}

// Service moves settlement tokens from a custodial wallet into the exchange
// vault, approving first when the standing allowance is short.
type Service interface {
	Deposit(ctx context.Context, req *Request) (*Result, error)
}

type service struct {
	custody  custody.Service
	brokerID string

	newReader func(network chain.Network) (ChainReader, error)

	confirmTimeout    time.Duration
	allowanceAttempts int
	allowanceInterval time.Duration
}

// Option adjusts a deposit service.
type Option func(*service)

// WithReaderFactory overrides how per-chain read clients are constructed.
func WithReaderFactory(factory func(network chain.Network) (ChainReader, error)) Option {
	return func(s *service) { s.newReader = factory }
}

// WithConfirmTimeout bounds how long mined-transaction waits may take.
func WithConfirmTimeout(timeout time.Duration) Option {
	return func(s *service) { s.confirmTimeout = timeout }
}

// WithAllowancePolling bounds the post-approval allowance re-checks.
func WithAllowancePolling(attempts int, interval time.Duration) Option {
	return func(s *service) {
		s.allowanceAttempts = attempts
		s.allowanceInterval = interval
	}
}

//nolint:ireturn
func NewService(custodyService custody.Service, brokerID string, opts ...Option) Service {
	s := &service{
		custody:  custodyService,
		brokerID: brokerID,
		newReader: func(network chain.Network) (ChainReader, error) {
			return chain.NewClientForNetwork(network, "")
		},
		confirmTimeout:    2 * time.Minute,
		allowanceAttempts: 10,
		allowanceInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Deposit(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.WalletID == "" {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "wallet id is required")
	}
	if req.Amount.Sign() <= 0 {
		return nil, errors.Wrap(orderly.ErrInvalidAmount, "deposit amount must be positive")
	}

	network, err := chain.Lookup(req.ChainID)
	if err != nil {
		return nil, err
	}

	reader, err := s.newReader(network)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to chain RPC")
	}

	address, err := s.custody.ResolveAddress(ctx, req.WalletID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve wallet address")
	}

	decimals, err := reader.TokenDecimals(ctx, network.USDC)
	if err != nil {
		return nil, err
	}

	scaled := req.Amount.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, errors.Wrapf(orderly.ErrInvalidAmount, "amount %s has more precision than the token's %d decimals", req.Amount, decimals)
	}
	amount := chain.MaskUint128(scaled.BigInt())
	if amount.Sign() <= 0 {
		return nil, errors.Wrap(orderly.ErrInvalidAmount, "deposit amount must be positive")
	}

	accountID, err := identity.AccountID(address, s.brokerID)
	if err != nil {
		return nil, err
	}

	depositData := chain.DepositData{
		AccountID:   accountID,
		BrokerHash:  identity.BrokerHash(s.brokerID),
		TokenHash:   identity.TokenHash(orderly.TokenUSDC),
		TokenAmount: amount,
	}

	result := &Result{
		Step:      StepCheckBalance,
		AccountID: accountID,
		Amount:    amount,
	}
	if req.Resume != nil {
		result.Step = req.Resume.Step
		switch req.Resume.Step {
		case StepAwaitApproval:
			result.ApproveTxHash = req.Resume.TxHash
		case StepAwaitDeposit:
			result.DepositTxHash = req.Resume.TxHash
		default:
		}
	}

	flowLog := log.With().
		Str("wallet_id", req.WalletID).
		Int64("chain_id", req.ChainID).
		Str("account_id", accountID.Hex()).
		Str("amount", amount.String()).
		Logger()

	for result.Step != StepDone {
		flowLog.Info().Str("step", string(result.Step)).Msg("Deposit step")

		switch result.Step {
		case StepCheckBalance:
			balance, err := reader.TokenBalance(ctx, network.USDC, address)
			if err != nil {
				return result, err
			}
			if balance.Cmp(amount) < 0 {
				return result, errors.Wrapf(orderly.ErrInsufficientFunds, "balance %s is below deposit amount %s", balance, amount)
			}
			result.Step = StepCheckAllowance

		case StepCheckAllowance:
			allowance, err := reader.TokenAllowance(ctx, network.USDC, address, network.Vault)
			if err != nil {
				return result, err
			}
			if allowance.Cmp(amount) >= 0 {
				result.Step = StepQuoteFee
			} else {
				result.Step = StepApprove
			}

		case StepApprove:
			// Exact-amount approval, no standing unlimited allowance.
			calldata, err := chain.ApproveCalldata(network.Vault, amount)
			if err != nil {
				return result, err
			}
			txHash, err := s.custody.SendTransaction(ctx, req.WalletID, &custody.TransactionRequest{
				ChainID: req.ChainID,
				To:      network.USDC,
				Data:    calldata,
			})
			if err != nil {
				return result, errors.Wrap(err, "failed to broadcast approval")
			}
			result.ApproveTxHash = txHash
			result.Step = StepAwaitApproval

		case StepAwaitApproval:
			if _, err := reader.WaitMined(ctx, result.ApproveTxHash, s.confirmTimeout); err != nil {
				return result, errors.Wrap(err, "approval not confirmed")
			}
			result.Step = StepVerifyAllowance

		case StepVerifyAllowance:
			if err := s.pollAllowance(ctx, reader, network, address, amount); err != nil {
				return result, err
			}
			result.Step = StepQuoteFee

		case StepQuoteFee:
			fee, err := reader.DepositFee(ctx, network.Vault, address, depositData)
			if err != nil {
				return result, err
			}
			result.Fee = fee
			result.Step = StepSubmitDeposit

		case StepSubmitDeposit:
			calldata, err := chain.DepositCalldata(depositData)
			if err != nil {
				return result, err
			}
			txHash, err := s.custody.SendTransaction(ctx, req.WalletID, &custody.TransactionRequest{
				ChainID: req.ChainID,
				To:      network.Vault,
				Data:    calldata,
				Value:   result.Fee,
			})
			if err != nil {
				return result, errors.Wrap(err, "failed to broadcast deposit")
			}
			result.DepositTxHash = txHash
			result.Step = StepAwaitDeposit

		case StepAwaitDeposit:
			if _, err := reader.WaitMined(ctx, result.DepositTxHash, s.confirmTimeout); err != nil {
				return result, errors.Wrap(err, "deposit not confirmed")
			}
			result.Step = StepDone

		default:
			return result, errors.Wrapf(orderly.ErrInvalidArgument, "unknown deposit step %q", result.Step)
		}
	}

	flowLog.Info().
		Str("deposit_tx", result.DepositTxHash.Hex()).
		Msg("Deposit confirmed")

	return result, nil
}

// pollAllowance re-reads the allowance after a confirmed approval until the
// RPC endpoint reflects it. Lagging endpoints can serve stale state for a
// few blocks after the receipt lands.
func (s *service) pollAllowance(ctx context.Context, reader ChainReader, network chain.Network, owner common.Address, amount *big.Int) error {
	for attempt := 0; attempt < s.allowanceAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), "allowance polling interrupted")
			case <-time.After(s.allowanceInterval):
			}
		}

		allowance, err := reader.TokenAllowance(ctx, network.USDC, owner, network.Vault)
		if err != nil {
			log.Debug().Err(err).Msg("Allowance re-check failed, will retry")
			continue
		}
		if allowance.Cmp(amount) >= 0 {
			return nil
		}
	}

	return errors.Wrapf(orderly.ErrAllowanceNotObserved, "allowance still below %s after %d checks", amount, s.allowanceAttempts)
}
