package api_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/deposit"
)

// word32 is a single 32 byte return word with the given value in the last
// byte, hex encoded the way eth_call responses are.
func word32(value byte) string {
	word := make([]byte, 32)
	word[31] = value
	return "0x" + hex.EncodeToString(word)
}

func newRPCStub(t *testing.T, chainIDHex string, callResult string, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result := callResult
		if req.Method == "eth_chainId" {
			result = chainIDHex
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      json.RawMessage(req.ID),
			"result":  result,
		}))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestInitComponentsUsesConfiguredRPCURL(t *testing.T) {
	var rpcCalls atomic.Int64
	// Every eth_call answers with the value 6, so the flow reads 6 token
	// decimals and then a balance of 6 base units.
	rpcSrv := newRPCStub(t, "0x2105", word32(6), &rpcCalls)

	privySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"wal-1","address":"0x036CbD53842c5426634e7929541eC2318f3dCF7e"}`))
	}))
	t.Cleanup(privySrv.Close)

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.Orderly.ChainID = 8453
	cfg.Orderly.AccountID = ""
	cfg.Orderly.Secret = ""
	cfg.Privy.BaseURL = privySrv.URL
	cfg.Privy.AppID = "app-id"
	cfg.Privy.AppSecret = "app-secret"
	cfg.Chain.RPCURLOverride = rpcSrv.URL
	cfg.Chain.ConfirmTimeout = time.Second
	cfg.Chain.AllowanceAttempts = 1
	cfg.Chain.AllowanceInterval = time.Millisecond

	s := api.NewServer(cfg)
	require.NoError(t, s.InitComponents())

	result, err := s.Deposit.Deposit(context.Background(), &deposit.Request{
		WalletID: "wal-1",
		ChainID:  cfg.Orderly.ChainID,
		Amount:   decimal.NewFromInt(1),
	})

	// An insufficient-funds stop on the stubbed balance proves the reads
	// went to the configured endpoint, not the registry default.
	require.ErrorIs(t, err, orderly.ErrInsufficientFunds)
	require.NotNil(t, result)
	require.Equal(t, deposit.StepCheckBalance, result.Step)
	require.GreaterOrEqual(t, rpcCalls.Load(), int64(2))
}
