package custody

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/starchild/orderly-bridge/internal/orderly"
)

// DefaultPrivyBaseURL is the Privy wallet API endpoint used when no base URL
// is configured.
const DefaultPrivyBaseURL = "https://auth.privy.io/api/v1"

const (
	privyRequestTimeout = 30 * time.Second

	authzKeyPrefix = "wallet-auth:"
)

// PrivyConfig configures the Privy-backed custody client. AuthorizationKey
// is the base64 DER P-256 private key used to sign privileged wallet
// operations; it may be empty for deployments without an authorization key
// quorum.
type PrivyConfig struct {
	BaseURL          string
	AppID            string
	AppSecret        string
	AuthorizationKey string
}

// PrivyClient implements Service against the Privy wallet API.
type PrivyClient struct {
	cfg      PrivyConfig
	http     *http.Client
	authzKey *ecdsa.PrivateKey
}

var _ Service = (*PrivyClient)(nil)

// NewPrivyClient validates the configuration and parses the authorization
// key when one is configured.
func NewPrivyClient(cfg PrivyConfig) (*PrivyClient, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "privy app id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPrivyBaseURL
	}

	c := &PrivyClient{
		cfg:  cfg,
		http: &http.Client{Timeout: privyRequestTimeout},
	}

	if cfg.AuthorizationKey != "" {
		key, err := parseAuthorizationKey(cfg.AuthorizationKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse authorization key")
		}
		c.authzKey = key
	}

	return c, nil
}

func parseAuthorizationKey(encoded string) (*ecdsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, authzKeyPrefix))
	if err != nil {
		return nil, errors.Wrap(err, "authorization key is not valid base64")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errors.Wrap(err, "authorization key is not valid PKCS8")
	}

	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("authorization key is not an ECDSA key")
	}
	return key, nil
}

// walletRecord is the subset of the wallet object this engine reads.
type walletRecord struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Addresses []struct {
		Address string `json:"address"`
	} `json:"addresses"`
}

// ResolveAddress fetches the wallet record and extracts its chain address.
func (c *PrivyClient) ResolveAddress(ctx context.Context, walletID string) (common.Address, error) {
	if walletID == "" {
		return common.Address{}, errors.Wrap(orderly.ErrInvalidArgument, "wallet id is required")
	}

	var record walletRecord
	if err := c.send(ctx, http.MethodGet, "/wallets/"+walletID, nil, &record); err != nil {
		return common.Address{}, errors.Wrap(err, "failed to get wallet")
	}

	address := record.Address
	if address == "" && len(record.Addresses) > 0 {
		address = record.Addresses[0].Address
	}
	if !common.IsHexAddress(address) {
		return common.Address{}, errors.Errorf("wallet %s has no usable address", walletID)
	}

	return common.HexToAddress(address), nil
}

// rpcRequest is Privy's wallet RPC envelope.
type rpcRequest struct {
	Method string         `json:"method"`
	CAIP2  string         `json:"caip2,omitempty"`
	Params map[string]any `json:"params"`
}

type rpcResponse struct {
	Data struct {
		Signature string `json:"signature"`
		Hash      string `json:"hash"`
	} `json:"data"`
	Signature string `json:"signature"`
	Hash      string `json:"hash"`
}

// SignTypedData delegates an EIP-712 signature to the wallet's key.
func (c *PrivyClient) SignTypedData(ctx context.Context, walletID string, typedData apitypes.TypedData) (string, error) {
	if walletID == "" {
		return "", errors.Wrap(orderly.ErrInvalidArgument, "wallet id is required")
	}

	req := &rpcRequest{
		Method: "eth_signTypedData_v4",
		Params: map[string]any{
			"typed_data": typedData,
		},
	}

	var res rpcResponse
	if err := c.send(ctx, http.MethodPost, "/wallets/"+walletID+"/rpc", req, &res); err != nil {
		return "", errors.Wrap(err, "failed to sign typed data")
	}

	signature := res.Data.Signature
	if signature == "" {
		signature = res.Signature
	}
	if signature == "" {
		return "", errors.New("custody service returned no signature")
	}

	log.Debug().
		Str("wallet_id", walletID).
		Str("primary_type", typedData.PrimaryType).
		Msg("Delegated typed-data signature obtained")

	return signature, nil
}

// SendTransaction delegates transaction signing and broadcast to the
// custody service.
func (c *PrivyClient) SendTransaction(ctx context.Context, walletID string, txReq *TransactionRequest) (common.Hash, error) {
	if walletID == "" {
		return common.Hash{}, errors.Wrap(orderly.ErrInvalidArgument, "wallet id is required")
	}
	if txReq == nil {
		return common.Hash{}, errors.Wrap(orderly.ErrInvalidArgument, "transaction request is required")
	}

	transaction := map[string]any{
		"chain_id": hexutil.EncodeUint64(uint64(txReq.ChainID)),
		"to":       txReq.To.Hex(),
		"data":     hexutil.Encode(txReq.Data),
	}
	if txReq.Value != nil && txReq.Value.Sign() > 0 {
		transaction["value"] = hexutil.EncodeBig(txReq.Value)
	}

	req := &rpcRequest{
		Method: "eth_sendTransaction",
		CAIP2:  fmt.Sprintf("eip155:%d", txReq.ChainID),
		Params: map[string]any{
			"transaction": transaction,
		},
	}

	var res rpcResponse
	if err := c.send(ctx, http.MethodPost, "/wallets/"+walletID+"/rpc", req, &res); err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to send transaction")
	}

	rawHash := res.Data.Hash
	if rawHash == "" {
		rawHash = res.Hash
	}
	hashBytes, err := hexutil.Decode(rawHash)
	if err != nil || len(hashBytes) != common.HashLength {
		return common.Hash{}, errors.Errorf("custody service returned unusable transaction hash %q", rawHash)
	}

	return common.BytesToHash(hashBytes), nil
}

func (c *PrivyClient) send(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	req.SetBasicAuth(c.cfg.AppID, c.cfg.AppSecret)
	req.Header.Set("privy-app-id", c.cfg.AppID)
	req.Header.Set("Content-Type", "application/json")

	if c.authzKey != nil && method != http.MethodGet {
		signature, err := c.signAuthorization(method, c.cfg.BaseURL+path, payload)
		if err != nil {
			return errors.Wrap(err, "failed to sign authorization payload")
		}
		req.Header.Set("privy-authorization-signature", signature)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "custody request %s %s failed", method, path)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read custody response")
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("custody service returned status %d: %s", res.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(err, "failed to decode custody response")
		}
	}

	return nil
}

// signAuthorization signs the canonical authorization payload with the
// P-256 authorization key: sha256 over the JSON payload, DER signature,
// base64.
func (c *PrivyClient) signAuthorization(method, fullURL string, body []byte) (string, error) {
	var bodyValue any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &bodyValue); err != nil {
			return "", errors.Wrap(err, "failed to canonicalize body")
		}
	}

	canonical, err := json.Marshal(map[string]any{
		"version": 1,
		"method":  method,
		"url":     fullURL,
		"body":    bodyValue,
		"headers": map[string]string{"privy-app-id": c.cfg.AppID},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal authorization payload")
	}

	digest := sha256.Sum256(canonical)
	signature, err := ecdsa.SignASN1(rand.Reader, c.authzKey, digest[:])
	if err != nil {
		return "", errors.Wrap(err, "failed to sign digest")
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// hexSignatureLength is the expected textual length of a 65-byte wallet
// signature, used by callers for sanity checks.
const hexSignatureLength = 2 + 2*65

// ValidateSignatureHex checks that a delegated signature has the canonical
// 65-byte hex form.
func ValidateSignatureHex(signature string) error {
	if len(signature) != hexSignatureLength || !strings.HasPrefix(signature, "0x") {
		return errors.Errorf("signature %q is not a 65-byte hex string", signature)
	}
	if _, err := hex.DecodeString(signature[2:]); err != nil {
		return errors.Wrap(err, "signature is not valid hex")
	}
	return nil
}
