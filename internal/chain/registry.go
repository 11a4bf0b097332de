package chain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github/starchild/orderly-bridge/internal/orderly"
)

// Network is the per-chain deployment the bridge needs to move funds: the
// settlement token, the exchange vault it is deposited into, and a public
// RPC endpoint.
type Network struct {
	ChainID int64
	Name    string
	USDC    common.Address
	Vault   common.Address
	RPCURL  string
}

var networks = map[int64]Network{
	1: {
		ChainID: 1,
		Name:    "ethereum",
		USDC:    common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"),
		Vault:   common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"),
		RPCURL:  "https://rpc.ankr.com/eth",
	},
	11155111: {
		ChainID: 11155111,
		Name:    "sepolia",
		USDC:    common.HexToAddress("0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"),
		Vault:   common.HexToAddress("0x0EaC556c0C2321BA25b9DC01e4e3c95aD5CDCd2f"),
		RPCURL:  "https://rpc.ankr.com/eth_sepolia",
	},
	42161: {
		ChainID: 42161,
		Name:    "arbitrum",
		USDC:    common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		Vault:   common.HexToAddress("0x816f722424B49Cf1275cc86DA9840Fbd5a6167e9"),
		RPCURL:  "https://arb1.arbitrum.io/rpc",
	},
	421614: {
		ChainID: 421614,
		Name:    "arbitrum-sepolia",
		USDC:    common.HexToAddress("0x75faf114eafb1BDbe2F0316DF893fd58CE46AA4d"),
		Vault:   common.HexToAddress("0x0EaC556c0C2321BA25b9DC01e4e3c95aD5CDCd2f"),
		RPCURL:  "https://sepolia-rollup.arbitrum.io/rpc",
	},
	10: {
		ChainID: 10,
		Name:    "optimism",
		USDC:    common.HexToAddress("0x0b2c639c533813f4aa9d7837caf62653d097ff85"),
		Vault:   common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"),
		RPCURL:  "https://mainnet.optimism.io",
	},
	11155420: {
		ChainID: 11155420,
		Name:    "optimism-sepolia",
		USDC:    common.HexToAddress("0x5fd84259d66Cd46123540766Be93DFE6D43130D7"),
		Vault:   common.HexToAddress("0xEfF2896077B6ff95379EfA89Ff903598190805EC"),
		RPCURL:  "https://sepolia.optimism.io",
	},
	8453: {
		ChainID: 8453,
		Name:    "base",
		USDC:    common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		Vault:   common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"),
		RPCURL:  "https://mainnet.base.org",
	},
	84532: {
		ChainID: 84532,
		Name:    "base-sepolia",
		USDC:    common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
		Vault:   common.HexToAddress("0xdc7348975aE9334DbdcB944DDa9163Ba8406a0ec"),
		RPCURL:  "https://sepolia.base.org",
	},
	5000: {
		ChainID: 5000,
		Name:    "mantle",
		USDC:    common.HexToAddress("0x09bc4e0d864854c6afb6eb9a9cdf58ac190d0df9"),
		Vault:   common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"),
		RPCURL:  "https://rpc.mantle.xyz",
	},
	5003: {
		ChainID: 5003,
		Name:    "mantle-sepolia",
		USDC:    common.HexToAddress("0xAcab8129E2cE587fD203FD770ec9ECAFA2C88080"),
		Vault:   common.HexToAddress("0xfb0E5f3D16758984E668A3d76f0963710E775503"),
		RPCURL:  "https://rpc.sepolia.mantle.xyz",
	},
	56: {
		ChainID: 56,
		Name:    "bsc",
		USDC:    common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"),
		Vault:   common.HexToAddress("0x816f722424B49Cf1275cc86DA9840Fbd5a6167e9"),
		RPCURL:  "https://bsc-dataseed.binance.org/",
	},
	97: {
		ChainID: 97,
		Name:    "bsc-testnet",
		USDC:    common.HexToAddress("0x31873b5804bABE258d6ea008f55e08DD00b7d51E"),
		Vault:   common.HexToAddress("0xaf2036D5143219fa00dDd90e7A2dbF3E36dba050"),
		RPCURL:  "https://data-seed-prebsc-1-s1.binance.org:8545/",
	},
	137: {
		ChainID: 137,
		Name:    "polygon",
		USDC:    common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"),
		Vault:   common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"),
		RPCURL:  "https://polygon-rpc.com",
	},
	80001: {
		ChainID: 80001,
		Name:    "polygon-mumbai",
		USDC:    common.HexToAddress("0x41e94eb019c0762f9bfcf9fb1f3f082b1e1e2079"),
		Vault:   common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"),
		RPCURL:  "https://rpc.ankr.com/polygon_mumbai",
	},
}

// Lookup returns the deployment for the given chain ID.
func Lookup(chainID int64) (Network, error) {
	network, ok := networks[chainID]
	if !ok {
		return Network{}, errors.Wrapf(orderly.ErrInvalidArgument, "chain %d is not supported", chainID)
	}
	return network, nil
}

// SupportedChainIDs lists every chain the registry knows about, in no
// particular order.
func SupportedChainIDs() []int64 {
	ids := make([]int64, 0, len(networks))
	for id := range networks {
		ids = append(ids, id)
	}
	return ids
}
