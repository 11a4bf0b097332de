package identity

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/starchild/orderly-bridge/internal/orderly"
)

// accountIDArgs is the ABI tuple (address, bytes32) the exchange hashes to
// derive an account identifier.
var accountIDArgs = func() abi.Arguments {
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	bytes32Type, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{
		{Type: addressType},
		{Type: bytes32Type},
	}
}()

// AccountID derives the exchange account identifier for a wallet address
// under a broker: keccak256(abi.encode(address, keccak256(brokerID))).
// It is a pure function of both inputs and is recomputed on every operation,
// never cached across wallets.
func AccountID(address common.Address, brokerID string) (common.Hash, error) {
	if brokerID == "" {
		return common.Hash{}, errors.Wrap(orderly.ErrInvalidArgument, "broker id must not be empty")
	}

	encoded, err := accountIDArgs.Pack(address, BrokerHash(brokerID))
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to abi-encode account id preimage")
	}

	return crypto.Keccak256Hash(encoded), nil
}

// AccountIDFromHex is AccountID for callers holding the address as a hex
// string. The address must be a well-formed 20-byte hex address.
func AccountIDFromHex(address string, brokerID string) (common.Hash, error) {
	if !common.IsHexAddress(address) {
		return common.Hash{}, errors.Wrapf(orderly.ErrInvalidArgument, "malformed address %q", address)
	}

	return AccountID(common.HexToAddress(address), brokerID)
}

// BrokerHash returns keccak256 of the broker identifier, as used in vault
// deposit payloads.
func BrokerHash(brokerID string) common.Hash {
	return crypto.Keccak256Hash([]byte(brokerID))
}

// TokenHash returns keccak256 of the token symbol, as used in vault deposit
// payloads.
func TokenHash(symbol string) common.Hash {
	return crypto.Keccak256Hash([]byte(symbol))
}
