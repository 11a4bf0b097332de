package withdraw

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github/starchild/orderly-bridge/internal/custody"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/auth"
	"github/starchild/orderly-bridge/internal/orderly/client"
	"github/starchild/orderly-bridge/internal/orderly/message"
)

// Exchange is the slice of the exchange API the withdrawal service uses.
// All four endpoints require API-key authentication.
type Exchange interface {
	WithdrawNonce(ctx context.Context, creds *auth.Credentials) (uint64, error)
	RequestWithdrawal(ctx context.Context, creds *auth.Credentials, req *client.SignedRequest) (json.RawMessage, error)
	SettleNonce(ctx context.Context, creds *auth.Credentials) (uint64, error)
	RequestPnlSettlement(ctx context.Context, creds *auth.Credentials, req *client.SignedRequest) (json.RawMessage, error)
}

// Request describes a withdrawal from the exchange balance back to a chain
// address. Receiver defaults to the custodial wallet's own address; Token
// defaults to USDC.
type Request struct {
	WalletID string
	Token    string
	Amount   decimal.Decimal
	Receiver string
}

// Result reports the accepted withdrawal.
type Result struct {
	Token         string
	Amount        decimal.Decimal
	Receiver      string
	WithdrawNonce uint64
	Raw           json.RawMessage
}

// Service requests withdrawals and PnL settlements, pairing the API-key
// authenticated endpoints with wallet-signed ledger messages.
type Service interface {
	Withdraw(ctx context.Context, creds *auth.Credentials, req *Request) (*Result, error)

	// SettlePnl moves unrealized perp PnL into the settled balance, a
	// prerequisite when the withdrawable balance lags trading gains.
	SettlePnl(ctx context.Context, creds *auth.Credentials, walletID string) (json.RawMessage, error)
}

type service struct {
	custody  custody.Service
	exchange Exchange
	builder  *message.Builder
}

//nolint:ireturn
func NewService(custodyService custody.Service, exchange Exchange, builder *message.Builder) Service {
	return &service{
		custody:  custodyService,
		exchange: exchange,
		builder:  builder,
	}
}

func (s *service) Withdraw(ctx context.Context, creds *auth.Credentials, req *Request) (*Result, error) {
	if req == nil || req.WalletID == "" {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "wallet id is required")
	}
	if creds == nil {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "API-key credentials are required")
	}

	token := req.Token
	if token == "" {
		token = orderly.TokenUSDC
	}
	decimals, ok := orderly.TokenDecimals[token]
	if !ok {
		return nil, errors.Wrapf(orderly.ErrInvalidArgument, "token %s is not withdrawable", token)
	}

	// The protocol minimum is checked before any network call so an
	// undersized request costs nothing.
	if req.Amount.LessThan(orderly.MinWithdrawalAmount) {
		return nil, errors.Wrapf(orderly.ErrInvalidAmount, "amount %s is below the %s minimum", req.Amount, orderly.MinWithdrawalAmount)
	}

	scaled := req.Amount.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, errors.Wrapf(orderly.ErrInvalidAmount, "amount %s has more precision than %s's %d decimals", req.Amount, token, decimals)
	}
	amount := scaled.BigInt()

	address, err := s.custody.ResolveAddress(ctx, req.WalletID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve wallet address")
	}

	receiver := address
	if req.Receiver != "" {
		if !common.IsHexAddress(req.Receiver) {
			return nil, errors.Wrapf(orderly.ErrInvalidArgument, "receiver %q is not a valid address", req.Receiver)
		}
		receiver = common.HexToAddress(req.Receiver)
	}

	nonce, err := s.exchange.WithdrawNonce(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch withdraw nonce")
	}

	payload, err := s.builder.Withdraw(receiver, token, amount, nonce)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build withdrawal message")
	}

	signature, err := s.custody.SignTypedData(ctx, req.WalletID, payload.TypedData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign withdrawal message")
	}
	if err := custody.ValidateSignatureHex(signature); err != nil {
		return nil, errors.Wrap(err, "custody service returned an unusable signature")
	}

	raw, err := s.exchange.RequestWithdrawal(ctx, creds, &client.SignedRequest{
		Message:           payload.Message,
		Signature:         signature,
		UserAddress:       address.Hex(),
		VerifyingContract: message.LedgerVerifyingContract,
	})
	if err != nil {
		return nil, errors.Wrap(err, "withdrawal rejected")
	}

	log.Info().
		Str("wallet_id", req.WalletID).
		Str("token", token).
		Str("amount", req.Amount.String()).
		Str("receiver", receiver.Hex()).
		Uint64("withdraw_nonce", nonce).
		Msg("Withdrawal accepted")

	return &Result{
		Token:         token,
		Amount:        req.Amount,
		Receiver:      receiver.Hex(),
		WithdrawNonce: nonce,
		Raw:           raw,
	}, nil
}

func (s *service) SettlePnl(ctx context.Context, creds *auth.Credentials, walletID string) (json.RawMessage, error) {
	if walletID == "" {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "wallet id is required")
	}
	if creds == nil {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "API-key credentials are required")
	}

	address, err := s.custody.ResolveAddress(ctx, walletID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve wallet address")
	}

	nonce, err := s.exchange.SettleNonce(ctx, creds)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch settle nonce")
	}

	payload, err := s.builder.SettlePnl(nonce)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build settlement message")
	}

	signature, err := s.custody.SignTypedData(ctx, walletID, payload.TypedData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign settlement message")
	}
	if err := custody.ValidateSignatureHex(signature); err != nil {
		return nil, errors.Wrap(err, "custody service returned an unusable signature")
	}

	raw, err := s.exchange.RequestPnlSettlement(ctx, creds, &client.SignedRequest{
		Message:           payload.Message,
		Signature:         signature,
		UserAddress:       address.Hex(),
		VerifyingContract: message.LedgerVerifyingContract,
	})
	if err != nil {
		return nil, errors.Wrap(err, "settlement rejected")
	}

	log.Info().
		Str("wallet_id", walletID).
		Uint64("settle_nonce", nonce).
		Msg("PnL settlement accepted")

	return raw, nil
}
