package custody_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"
	"github/starchild/orderly-bridge/internal/custody"
)

func newTestClient(t *testing.T, handler http.Handler) (*custody.PrivyClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := custody.NewPrivyClient(custody.PrivyConfig{
		BaseURL:   srv.URL,
		AppID:     "app-id",
		AppSecret: "app-secret",
	})
	require.NoError(t, err)

	return c, srv
}

func TestNewPrivyClientRequiresCredentials(t *testing.T) {
	_, err := custody.NewPrivyClient(custody.PrivyConfig{})
	require.Error(t, err)
}

func TestResolveAddressFlatField(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wallets/wal-1", r.URL.Path)
		require.Equal(t, "app-id", r.Header.Get("privy-app-id"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "app-id", user)
		require.Equal(t, "app-secret", pass)

		_, _ = w.Write([]byte(`{"id":"wal-1","address":"0x036CbD53842c5426634e7929541eC2318f3dCF7e"}`))
	}))

	address, err := c.ResolveAddress(context.Background(), "wal-1")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"), address)
}

func TestResolveAddressNestedField(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"wal-1","addresses":[{"address":"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"}]}`))
	}))

	address, err := c.ResolveAddress(context.Background(), "wal-1")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), address)
}

func TestResolveAddressRejectsMissingAddress(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"wal-1"}`))
	}))

	_, err := c.ResolveAddress(context.Background(), "wal-1")
	require.Error(t, err)
}

func TestSignTypedData(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wallets/wal-1/rpc", r.URL.Path)

		var body struct {
			Method string `json:"method"`
			Params struct {
				TypedData json.RawMessage `json:"typed_data"`
			} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "eth_signTypedData_v4", body.Method)
		require.Contains(t, string(body.Params.TypedData), `"Registration"`)

		_, _ = w.Write([]byte(`{"data":{"signature":"0xdeadbeef"}}`))
	}))

	td := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {{Name: "name", Type: "string"}},
			"Registration": {{Name: "brokerId", Type: "string"}},
		},
		PrimaryType: "Registration",
		Domain:      apitypes.TypedDataDomain{Name: "Orderly", ChainId: math.NewHexOrDecimal256(8453)},
		Message:     apitypes.TypedDataMessage{"brokerId": "starchild"},
	}

	signature, err := c.SignTypedData(context.Background(), "wal-1", td)
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", signature)
}

func TestSendTransaction(t *testing.T) {
	txHash := "0x" + "11" + "22334455667788990011223344556677889900112233445566778899001122"

	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Method string `json:"method"`
			CAIP2  string `json:"caip2"`
			Params struct {
				Transaction map[string]any `json:"transaction"`
			} `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "eth_sendTransaction", body.Method)
		require.Equal(t, "eip155:8453", body.CAIP2)
		require.Equal(t, "0x2105", body.Params.Transaction["chain_id"])
		require.Equal(t, "0xde0b6b3a7640000", body.Params.Transaction["value"])

		_, _ = w.Write([]byte(`{"data":{"hash":"` + txHash + `"}}`))
	}))

	hash, err := c.SendTransaction(context.Background(), "wal-1", &custody.TransactionRequest{
		ChainID: 8453,
		To:      common.HexToAddress("0x816f722424b49cf1275cc86da9840fbd5a6167e9"),
		Data:    []byte{0x01, 0x02},
		Value:   big.NewInt(1e18),
	})
	require.NoError(t, err)
	require.Equal(t, common.HexToHash(txHash), hash)
}

func TestSendTransactionRejectsBadHash(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"hash":"pending"}}`))
	}))

	_, err := c.SendTransaction(context.Background(), "wal-1", &custody.TransactionRequest{ChainID: 8453})
	require.Error(t, err)
}
