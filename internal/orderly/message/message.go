// Package message builds the EIP-712 typed messages the exchange requires
// for wallet-authorized actions: account registration, API-key grants,
// withdrawals and PnL settlement. It only assembles payloads; signing is the
// delegated signer's job.
package message

import (
	"encoding/json"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github/starchild/orderly-bridge/internal/orderly"
)

const (
	domainName    = "Orderly"
	domainVersion = "1"
)

var domainTypes = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// Builder constructs typed messages for one (broker, chain) configuration.
// The chain id is held as one canonical integer; the hex form used by the
// signing domain and the decimal form used by message bodies are both derived
// from it, never entered separately.
type Builder struct {
	brokerID string
	chainID  int64
	now      func() time.Time
}

// NewBuilder validates the configuration and returns a Builder.
func NewBuilder(brokerID string, chainID int64) (*Builder, error) {
	if brokerID == "" {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "broker id must not be empty")
	}
	if chainID <= 0 {
		return nil, errors.Wrapf(orderly.ErrInvalidArgument, "chain id must be positive, got %d", chainID)
	}

	return &Builder{
		brokerID: brokerID,
		chainID:  chainID,
		now:      time.Now,
	}, nil
}

// WithClock replaces the builder's clock, for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// BrokerID returns the broker the builder stamps into messages.
func (b *Builder) BrokerID() string { return b.brokerID }

// ChainID returns the canonical chain id.
func (b *Builder) ChainID() int64 { return b.chainID }

func (b *Builder) domain(verifyingContract string) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              domainName,
		Version:           domainVersion,
		ChainId:           math.NewHexOrDecimal256(b.chainID),
		VerifyingContract: verifyingContract,
	}
}

// Registration builds the account-registration message. The nonce comes from
// the exchange's registration-nonce endpoint and must never be generated
// locally.
func (b *Builder) Registration(registrationNonce string) (*SignablePayload, error) {
	if registrationNonce == "" {
		return nil, errors.Wrap(orderly.ErrMissingNonce, "registration requires a nonce from the exchange")
	}
	if _, ok := new(big.Int).SetString(registrationNonce, 10); !ok {
		return nil, errors.Wrapf(orderly.ErrInvalidArgument, "registration nonce %q is not a decimal integer", registrationNonce)
	}

	timestamp := b.now().UnixMilli()

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainTypes,
			"Registration": {
				{Name: "brokerId", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "timestamp", Type: "uint64"},
				{Name: "registrationNonce", Type: "uint256"},
			},
		},
		PrimaryType: "Registration",
		Domain:      b.domain(RegistrationVerifyingContract),
		Message: apitypes.TypedDataMessage{
			"brokerId":          b.brokerID,
			"chainId":           math.NewHexOrDecimal256(b.chainID),
			"timestamp":         strconv.FormatInt(timestamp, 10),
			"registrationNonce": registrationNonce,
		},
	}

	return &SignablePayload{
		TypedData:   typedData,
		PrimaryType: "Registration",
		Message: &RegistrationMessage{
			BrokerID:          b.brokerID,
			ChainID:           b.chainID,
			Timestamp:         timestamp,
			RegistrationNonce: json.Number(registrationNonce),
		},
	}, nil
}

// AddKey builds the API-key grant message embedding a freshly generated
// public key. The expiration is the signing timestamp plus the validity
// window.
func (b *Builder) AddKey(publicKey, scope string, validity time.Duration) (*SignablePayload, error) {
	if publicKey == "" {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "public key must not be empty")
	}
	if scope == "" {
		scope = orderly.DefaultKeyScope
	}
	if validity <= 0 {
		validity = orderly.DefaultKeyValidity
	}

	timestamp := b.now().UnixMilli()
	expiration := timestamp + validity.Milliseconds()

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainTypes,
			"AddOrderlyKey": {
				{Name: "brokerId", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "orderlyKey", Type: "string"},
				{Name: "scope", Type: "string"},
				{Name: "timestamp", Type: "uint64"},
				{Name: "expiration", Type: "uint64"},
			},
		},
		PrimaryType: "AddOrderlyKey",
		Domain:      b.domain(RegistrationVerifyingContract),
		Message: apitypes.TypedDataMessage{
			"brokerId":   b.brokerID,
			"chainId":    math.NewHexOrDecimal256(b.chainID),
			"orderlyKey": publicKey,
			"scope":      scope,
			"timestamp":  strconv.FormatInt(timestamp, 10),
			"expiration": strconv.FormatInt(expiration, 10),
		},
	}

	return &SignablePayload{
		TypedData:   typedData,
		PrimaryType: "AddOrderlyKey",
		Message: &AddKeyMessage{
			BrokerID:   b.brokerID,
			ChainID:    b.chainID,
			OrderlyKey: publicKey,
			Scope:      scope,
			Timestamp:  timestamp,
			Expiration: expiration,
		},
	}, nil
}

// Withdraw builds the withdrawal message. amount is in the token's smallest
// unit; withdrawNonce comes from the exchange's authenticated nonce endpoint.
func (b *Builder) Withdraw(receiver common.Address, token string, amount *big.Int, withdrawNonce uint64) (*SignablePayload, error) {
	if token == "" {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "token symbol must not be empty")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.Wrap(orderly.ErrInvalidAmount, "withdrawal amount must be positive")
	}
	if withdrawNonce == 0 {
		return nil, errors.Wrap(orderly.ErrMissingNonce, "withdrawal requires a nonce from the exchange")
	}

	timestamp := b.now().UnixMilli()
	nonce := strconv.FormatUint(withdrawNonce, 10)

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainTypes,
			"Withdraw": {
				{Name: "brokerId", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "receiver", Type: "address"},
				{Name: "token", Type: "string"},
				{Name: "amount", Type: "uint256"},
				{Name: "withdrawNonce", Type: "uint64"},
				{Name: "timestamp", Type: "uint64"},
			},
		},
		PrimaryType: "Withdraw",
		Domain:      b.domain(LedgerVerifyingContract),
		Message: apitypes.TypedDataMessage{
			"brokerId":      b.brokerID,
			"chainId":       math.NewHexOrDecimal256(b.chainID),
			"receiver":      receiver.Hex(),
			"token":         token,
			"amount":        amount.String(),
			"withdrawNonce": nonce,
			"timestamp":     strconv.FormatInt(timestamp, 10),
		},
	}

	return &SignablePayload{
		TypedData:   typedData,
		PrimaryType: "Withdraw",
		Message: &WithdrawMessage{
			BrokerID:      b.brokerID,
			ChainID:       b.chainID,
			Receiver:      receiver.Hex(),
			Token:         token,
			Amount:        amount.String(),
			WithdrawNonce: nonce,
			Timestamp:     strconv.FormatInt(timestamp, 10),
		},
	}, nil
}

// SettlePnl builds the PnL-settlement message. settleNonce comes from the
// exchange's authenticated settle-nonce endpoint.
func (b *Builder) SettlePnl(settleNonce uint64) (*SignablePayload, error) {
	if settleNonce == 0 {
		return nil, errors.Wrap(orderly.ErrMissingNonce, "settlement requires a nonce from the exchange")
	}

	timestamp := b.now().UnixMilli()
	nonce := strconv.FormatUint(settleNonce, 10)

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainTypes,
			"SettlePnl": {
				{Name: "brokerId", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "settleNonce", Type: "uint64"},
				{Name: "timestamp", Type: "uint64"},
			},
		},
		PrimaryType: "SettlePnl",
		Domain:      b.domain(LedgerVerifyingContract),
		Message: apitypes.TypedDataMessage{
			"brokerId":    b.brokerID,
			"chainId":     math.NewHexOrDecimal256(b.chainID),
			"settleNonce": nonce,
			"timestamp":   strconv.FormatInt(timestamp, 10),
		},
	}

	return &SignablePayload{
		TypedData:   typedData,
		PrimaryType: "SettlePnl",
		Message: &SettlePnlMessage{
			BrokerID:    b.brokerID,
			ChainID:     b.chainID,
			SettleNonce: nonce,
			Timestamp:   strconv.FormatInt(timestamp, 10),
		},
	}, nil
}
