package orderly

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultAPIBaseURL is the testnet REST endpoint. Mainnet is
	// https://api.orderly.org.
	DefaultAPIBaseURL = "https://testnet-api.orderly.org"

	// DefaultBrokerID namespaces accounts under the operator.
	DefaultBrokerID = "starchild"

	// DefaultChainID is Base mainnet.
	DefaultChainID int64 = 8453

	// DefaultKeyScope is the permission scope granted to a fresh API key.
	DefaultKeyScope = "read,trading"

	// DefaultKeyValidity is the lifetime stamped into a key-grant message.
	DefaultKeyValidity = 365 * 24 * time.Hour

	// TokenUSDC is the only token the deposit flow moves.
	TokenUSDC = "USDC"
)

// MinWithdrawalAmount is the protocol minimum, in whole token units.
// Requests below it are rejected before any network call.
var MinWithdrawalAmount = decimal.RequireFromString("1.001")

// TokenDecimals maps the token symbols the withdrawal flow accepts to their
// on-chain decimal counts. Deposits read decimals from the contract instead.
var TokenDecimals = map[string]int32{
	"USDC": 6,
	"USDT": 6,
	"DAI":  18,
	"WETH": 18,
	"ETH":  18,
}
