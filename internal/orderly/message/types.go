package message

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Verifying contracts published by the exchange. Registration and key grants
// verify against the off-chain domain; withdrawals and PnL settlement verify
// against the on-chain ledger contract.
const (
	RegistrationVerifyingContract = "0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"
	LedgerVerifyingContract       = "0x6F7a338F2aA472838dEFD3283eB360d4Dff5D203"
)

// SignablePayload pairs the typed data handed to the delegated signer with
// the message object that travels in the request body. The two render the
// same canonical values under different encodings (e.g. hex chainId in the
// domain, decimal in the body) and must always be transmitted together with
// the resulting signature.
type SignablePayload struct {
	TypedData   apitypes.TypedData
	Message     any
	PrimaryType string
}

// RegistrationMessage is the body form of the account-registration message.
type RegistrationMessage struct {
	BrokerID          string      `json:"brokerId"`
	ChainID           int64       `json:"chainId"`
	Timestamp         int64       `json:"timestamp"`
	RegistrationNonce json.Number `json:"registrationNonce"`
}

// AddKeyMessage is the body form of the API-key grant message.
type AddKeyMessage struct {
	BrokerID   string `json:"brokerId"`
	ChainID    int64  `json:"chainId"`
	OrderlyKey string `json:"orderlyKey"`
	Scope      string `json:"scope"`
	Timestamp  int64  `json:"timestamp"`
	Expiration int64  `json:"expiration"`
}

// WithdrawMessage is the body form of the withdrawal message. The wide
// integers ride as decimal strings here while the typed data hashes them as
// native integers.
type WithdrawMessage struct {
	BrokerID      string `json:"brokerId"`
	ChainID       int64  `json:"chainId"`
	Receiver      string `json:"receiver"`
	Token         string `json:"token"`
	Amount        string `json:"amount"`
	WithdrawNonce string `json:"withdrawNonce"`
	Timestamp     string `json:"timestamp"`
}

// SettlePnlMessage is the body form of the PnL-settlement message.
type SettlePnlMessage struct {
	BrokerID    string `json:"brokerId"`
	ChainID     int64  `json:"chainId"`
	SettleNonce string `json:"settleNonce"`
	Timestamp   string `json:"timestamp"`
}
