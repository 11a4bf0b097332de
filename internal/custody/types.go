// Package custody defines the wallet-custody collaborator: the engine never
// holds wallet private keys and delegates all wallet-domain signing to this
// service. The custody service, in turn, never sees exchange-API keys.
package custody

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// TransactionRequest asks the custody service to sign and broadcast one
// transaction under a managed wallet's key. Value is the native-token amount
// in wei; nil means zero.
type TransactionRequest struct {
	ChainID int64
	To      common.Address
	Data    []byte
	Value   *big.Int
}

// Service is the custody collaborator contract.
type Service interface {
	// ResolveAddress looks up the chain address of a managed wallet. Callers
	// resolve once per operation and treat the result as immutable.
	ResolveAddress(ctx context.Context, walletID string) (common.Address, error)

	// SignTypedData signs an EIP-712 payload under the wallet's key and
	// returns the 65-byte signature hex-encoded. The wallet private key
	// never leaves the custody service.
	SignTypedData(ctx context.Context, walletID string, typedData apitypes.TypedData) (string, error)

	// SendTransaction signs and broadcasts a transaction under the wallet's
	// key and returns the transaction hash.
	SendTransaction(ctx context.Context, walletID string, req *TransactionRequest) (common.Hash, error)
}
