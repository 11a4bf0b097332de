package chain

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github/starchild/orderly-bridge/internal/orderly"
)

// Minimal ABIs for the two contracts the bridge talks to: the settlement
// token and the exchange vault. The vault takes its deposit parameters as a
// single tuple and charges a native-token fee quoted by getDepositFee.
const (
	erc20ABIJSON = `[
		{"name":"approve","type":"function","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
	]`

	vaultABIJSON = `[
		{"name":"deposit","type":"function","stateMutability":"payable","inputs":[{"name":"depositData","type":"tuple","components":[{"name":"accountId","type":"bytes32"},{"name":"brokerHash","type":"bytes32"},{"name":"tokenHash","type":"bytes32"},{"name":"tokenAmount","type":"uint128"}]}],"outputs":[]},
		{"name":"getDepositFee","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"depositData","type":"tuple","components":[{"name":"accountId","type":"bytes32"},{"name":"brokerHash","type":"bytes32"},{"name":"tokenHash","type":"bytes32"},{"name":"tokenAmount","type":"uint128"}]}],"outputs":[{"name":"","type":"uint256"}]}
	]`
)

var (
	erc20ABI = mustParseABI(erc20ABIJSON)
	vaultABI = mustParseABI(vaultABIJSON)

	uint128Mask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// DepositData is the tuple the vault's deposit and getDepositFee methods
// take. TokenAmount is a uint128 on chain; callers truncate with
// MaskUint128 before packing.
type DepositData struct {
	AccountID   [32]byte `abi:"accountId"`
	BrokerHash  [32]byte `abi:"brokerHash"`
	TokenHash   [32]byte `abi:"tokenHash"`
	TokenAmount *big.Int `abi:"tokenAmount"`
}

// MaskUint128 truncates amount to the low 128 bits, matching the width of
// the vault's tokenAmount field.
func MaskUint128(amount *big.Int) *big.Int {
	return new(big.Int).And(amount, uint128Mask)
}

// ApproveCalldata encodes an ERC20 approve(spender, amount) call.
func ApproveCalldata(spender common.Address, amount *big.Int) ([]byte, error) {
	data, err := erc20ABI.Pack("approve", spender, amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack approve calldata")
	}
	return data, nil
}

// DepositCalldata encodes a vault deposit(depositData) call.
func DepositCalldata(depositData DepositData) ([]byte, error) {
	data, err := vaultABI.Pack("deposit", depositData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack deposit calldata")
	}
	return data, nil
}

// Client is a read-side RPC client over one or more endpoints for the same
// chain. Endpoints that fail to dial or go unhealthy are skipped and
// redialed on the next use.
type Client struct {
	urls    []string
	timeout time.Duration

	mu      sync.Mutex
	clients []*ethclient.Client
	current int
}

// NewClient dials the given RPC endpoints. Individual endpoints may be
// unreachable at construction time; an error is returned only when none of
// them can be dialed.
func NewClient(urls []string) (*Client, error) {
	if len(urls) == 0 {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "at least one RPC URL is required")
	}

	clients := make([]*ethclient.Client, len(urls))
	connected := 0
	for i, url := range urls {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			continue
		}
		clients[i] = client
		connected++
	}

	if connected == 0 {
		return nil, errors.Wrap(orderly.ErrChainCallFailed, "failed to connect to any RPC node")
	}

	return &Client{
		urls:    urls,
		timeout: 15 * time.Second,
		clients: clients,
	}, nil
}

// NewClientForNetwork dials the registry endpoint for the given chain,
// preferring overrideURL when set.
func NewClientForNetwork(network Network, overrideURL string) (*Client, error) {
	url := network.RPCURL
	if overrideURL != "" {
		url = overrideURL
	}
	return NewClient([]string{url})
}

// Close releases all underlying connections.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		if client != nil {
			client.Close()
		}
	}
}

// getClient returns a usable endpoint, starting from the last one that
// worked. Dead endpoints are redialed once per call.
func (c *Client) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := 0; i < len(c.clients); i++ {
		idx := (c.current + i) % len(c.clients)

		if c.clients[idx] == nil {
			client, err := ethclient.Dial(c.urls[idx])
			if err != nil {
				continue
			}
			c.clients[idx] = client
		}

		if _, err := c.clients[idx].ChainID(ctx); err != nil {
			log.Warn().
				Str("url", c.urls[idx]).
				Err(err).
				Msg("RPC endpoint health check failed, trying next")
			c.clients[idx].Close()
			c.clients[idx] = nil
			continue
		}

		c.current = idx
		return c.clients[idx], nil
	}

	return nil, errors.Wrap(orderly.ErrChainCallFailed, "all RPC endpoints are unavailable")
}

func (c *Client) callContract(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(orderly.ErrChainCallFailed, "contract call to %s failed: %v", to.Hex(), err)
	}
	return resp, nil
}

// TokenBalance returns the ERC20 balance of account.
func (c *Client) TokenBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", account)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack balanceOf calldata")
	}

	resp, err := c.callContract(ctx, token, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token balance")
	}

	return new(big.Int).SetBytes(resp), nil
}

// TokenAllowance returns the ERC20 allowance granted by owner to spender.
func (c *Client) TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", owner, spender)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack allowance calldata")
	}

	resp, err := c.callContract(ctx, token, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read token allowance")
	}

	return new(big.Int).SetBytes(resp), nil
}

// TokenDecimals returns the ERC20 decimals of token.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (uint8, error) {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return 0, errors.Wrap(err, "failed to pack decimals calldata")
	}

	resp, err := c.callContract(ctx, token, data)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read token decimals")
	}

	decimals := new(big.Int).SetBytes(resp)
	if !decimals.IsUint64() || decimals.Uint64() > 255 {
		return 0, errors.Wrap(orderly.ErrChainCallFailed, "token returned an unusable decimals value")
	}

	return uint8(decimals.Uint64()), nil
}

// DepositFee quotes the native-token fee the vault charges account for the
// given deposit.
func (c *Client) DepositFee(ctx context.Context, vault, account common.Address, depositData DepositData) (*big.Int, error) {
	data, err := vaultABI.Pack("getDepositFee", account, depositData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack getDepositFee calldata")
	}

	resp, err := c.callContract(ctx, vault, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to quote deposit fee")
	}

	outputs, err := vaultABI.Unpack("getDepositFee", resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack getDepositFee result")
	}

	fee, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, errors.Wrap(orderly.ErrChainCallFailed, "vault returned an unusable deposit fee")
	}

	return fee, nil
}

// WaitMined polls for the receipt of txHash until it lands or the timeout
// elapses. A missing receipt inside the window is not an error; running out
// the window is reported as a confirmation timeout, since the transaction
// may still be mined later.
func (c *Client) WaitMined(ctx context.Context, txHash common.Hash, timeout time.Duration) (*types.Receipt, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		client, err := c.getClient(ctx)
		if err == nil {
			receipt, rerr := client.TransactionReceipt(ctx, txHash)
			if rerr == nil {
				return receipt, nil
			}
			if !errors.Is(rerr, ethereum.NotFound) && !errors.Is(rerr, context.DeadlineExceeded) {
				log.Debug().
					Str("tx_hash", txHash.Hex()).
					Err(rerr).
					Msg("Receipt lookup failed, will retry")
			}
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(orderly.ErrConfirmationTimeout, "transaction %s not confirmed within %s", txHash.Hex(), timeout)
		case <-ticker.C:
		}
	}
}
