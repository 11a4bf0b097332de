package chain_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github/starchild/orderly-bridge/internal/chain"
	"github/starchild/orderly-bridge/internal/orderly"
)

func TestLookupKnownChains(t *testing.T) {
	base, err := chain.Lookup(8453)
	require.NoError(t, err)
	require.Equal(t, "base", base.Name)
	require.Equal(t, common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), base.USDC)
	require.Equal(t, common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"), base.Vault)
	require.Equal(t, "https://mainnet.base.org", base.RPCURL)

	for _, id := range chain.SupportedChainIDs() {
		network, err := chain.Lookup(id)
		require.NoError(t, err)
		require.Equal(t, id, network.ChainID)
		require.NotEqual(t, common.Address{}, network.USDC)
		require.NotEqual(t, common.Address{}, network.Vault)
		require.NotEmpty(t, network.RPCURL)
	}
}

func TestLookupUnknownChain(t *testing.T) {
	_, err := chain.Lookup(999999)
	require.ErrorIs(t, err, orderly.ErrInvalidArgument)
}

func TestApproveCalldata(t *testing.T) {
	spender := common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9")
	data, err := chain.ApproveCalldata(spender, big.NewInt(1_500_000))
	require.NoError(t, err)

	// 4-byte selector plus two 32-byte words.
	require.Len(t, data, 4+32+32)
	require.Equal(t, common.Hex2Bytes("095ea7b3"), data[:4])
	require.Equal(t, common.LeftPadBytes(spender.Bytes(), 32), data[4:36])
	require.Equal(t, big.NewInt(1_500_000), new(big.Int).SetBytes(data[36:]))
}

func TestDepositCalldata(t *testing.T) {
	depositData := chain.DepositData{
		AccountID:   common.HexToHash("0x01"),
		BrokerHash:  common.HexToHash("0x02"),
		TokenHash:   common.HexToHash("0x03"),
		TokenAmount: big.NewInt(1_000_000),
	}

	data, err := chain.DepositCalldata(depositData)
	require.NoError(t, err)

	// Selector plus the four statically-encoded tuple fields.
	require.Len(t, data, 4+4*32)
	require.Equal(t, depositData.AccountID[:], data[4:36])
	require.Equal(t, depositData.BrokerHash[:], data[36:68])
	require.Equal(t, depositData.TokenHash[:], data[68:100])
	require.Equal(t, big.NewInt(1_000_000), new(big.Int).SetBytes(data[100:]))
}

func TestMaskUint128(t *testing.T) {
	within := new(big.Int).Lsh(big.NewInt(1), 127)
	require.Equal(t, within, chain.MaskUint128(within))

	over := new(big.Int).Lsh(big.NewInt(1), 128)
	require.Equal(t, int64(0), chain.MaskUint128(over).Int64())

	mixed := new(big.Int).Add(over, big.NewInt(42))
	require.Equal(t, int64(42), chain.MaskUint128(mixed).Int64())
}

func TestNewClientRequiresURLs(t *testing.T) {
	_, err := chain.NewClient(nil)
	require.ErrorIs(t, err, orderly.ErrInvalidArgument)
}
