package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/auth"
)

// SignedRequest is the common body shape for wallet-authorized submissions:
// the message object, the delegated signature over its typed-data form, and
// the wallet address that produced it. The three always travel together.
type SignedRequest struct {
	Message           any    `json:"message"`
	Signature         string `json:"signature"`
	UserAddress       string `json:"userAddress"`
	VerifyingContract string `json:"verifyingContract,omitempty"`
}

// RegistrationNonce fetches a fresh registration nonce. Unauthenticated.
func (c *Client) RegistrationNonce(ctx context.Context) (string, error) {
	var data struct {
		RegistrationNonce json.Number `json:"registration_nonce"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/registration_nonce", nil, &data); err != nil {
		return "", errors.Wrap(err, "failed to get registration nonce")
	}
	if data.RegistrationNonce == "" {
		return "", errors.Wrap(orderly.ErrMissingNonce, "exchange returned no registration nonce")
	}
	return data.RegistrationNonce.String(), nil
}

// RegisterAccountResult is the exchange's answer to an account registration.
type RegisterAccountResult struct {
	AccountID string `json:"account_id"`
}

// RegisterAccount submits a signed registration message. Unauthenticated.
func (c *Client) RegisterAccount(ctx context.Context, req *SignedRequest) (*RegisterAccountResult, error) {
	var data RegisterAccountResult
	if err := c.do(ctx, http.MethodPost, "/v1/register_account", req, &data); err != nil {
		return nil, errors.Wrap(err, "failed to register account")
	}
	return &data, nil
}

// AddKeyResult is the exchange's answer to a key grant.
type AddKeyResult struct {
	ID         json.Number `json:"id"`
	OrderlyKey string      `json:"orderly_key"`
}

// AddKey submits a signed API-key grant. Unauthenticated at the transport
// level; authorization is the wallet signature inside the body.
func (c *Client) AddKey(ctx context.Context, req *SignedRequest) (*AddKeyResult, error) {
	var data AddKeyResult
	if err := c.do(ctx, http.MethodPost, "/v1/orderly_key", req, &data); err != nil {
		return nil, errors.Wrap(err, "failed to add orderly key")
	}
	return &data, nil
}

// WithdrawNonce fetches the account's next withdrawal nonce. Authenticated.
// The response key has varied upstream, so both forms are accepted.
func (c *Client) WithdrawNonce(ctx context.Context, creds *auth.Credentials) (uint64, error) {
	var data struct {
		WithdrawNonce json.Number `json:"withdraw_nonce"`
		Nonce         json.Number `json:"nonce"`
	}
	if err := c.doSigned(ctx, creds, http.MethodGet, "/v1/withdraw_nonce", nil, &data); err != nil {
		return 0, errors.Wrap(err, "failed to get withdraw nonce")
	}

	raw := data.WithdrawNonce
	if raw == "" {
		raw = data.Nonce
	}
	if raw == "" {
		return 0, errors.Wrap(orderly.ErrMissingNonce, "exchange returned no withdraw nonce")
	}

	nonce, err := strconv.ParseUint(raw.String(), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unparseable withdraw nonce %q", raw)
	}
	return nonce, nil
}

// RequestWithdrawal submits a signed withdrawal message. Authenticated.
func (c *Client) RequestWithdrawal(ctx context.Context, creds *auth.Credentials, req *SignedRequest) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.doSigned(ctx, creds, http.MethodPost, "/v1/withdraw_request", req, &data); err != nil {
		return nil, errors.Wrap(err, "failed to request withdrawal")
	}
	return data, nil
}

// SettleNonce fetches the account's next PnL-settlement nonce. Authenticated.
func (c *Client) SettleNonce(ctx context.Context, creds *auth.Credentials) (uint64, error) {
	var data struct {
		SettleNonce json.Number `json:"settle_nonce"`
	}
	if err := c.doSigned(ctx, creds, http.MethodGet, "/v1/settle_nonce", nil, &data); err != nil {
		return 0, errors.Wrap(err, "failed to get settle nonce")
	}
	if data.SettleNonce == "" {
		return 0, errors.Wrap(orderly.ErrMissingNonce, "exchange returned no settle nonce")
	}

	nonce, err := strconv.ParseUint(data.SettleNonce.String(), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unparseable settle nonce %q", data.SettleNonce)
	}
	return nonce, nil
}

// RequestPnlSettlement submits a signed settlement message. Authenticated.
func (c *Client) RequestPnlSettlement(ctx context.Context, creds *auth.Credentials, req *SignedRequest) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.doSigned(ctx, creds, http.MethodPost, "/v1/settle_pnl", req, &data); err != nil {
		return nil, errors.Wrap(err, "failed to request pnl settlement")
	}
	return data, nil
}

// Order types and sides the exchange accepts.
var (
	validOrderTypes = map[string]bool{
		"LIMIT": true, "MARKET": true, "IOC": true, "FOK": true,
		"POST_ONLY": true, "ASK": true, "BID": true,
	}
	priceRequiredOrderTypes = map[string]bool{
		"LIMIT": true, "IOC": true, "FOK": true, "POST_ONLY": true,
	}
	marketLikeOrderTypes = map[string]bool{
		"MARKET": true, "ASK": true, "BID": true,
	}
)

// OrderRequest creates an order. Quantity and Amount are mutually
// constrained per order type; see Validate.
type OrderRequest struct {
	Symbol          string           `json:"symbol"`
	OrderType       string           `json:"order_type"`
	Side            string           `json:"side"`
	OrderPrice      *decimal.Decimal `json:"order_price,omitempty"`
	OrderQuantity   *decimal.Decimal `json:"order_quantity,omitempty"`
	OrderAmount     *decimal.Decimal `json:"order_amount,omitempty"`
	VisibleQuantity *decimal.Decimal `json:"visible_quantity,omitempty"`
	ReduceOnly      bool             `json:"reduce_only,omitempty"`
	Slippage        *decimal.Decimal `json:"slippage,omitempty"`
	ClientOrderID   string           `json:"client_order_id,omitempty"`
	OrderTag        string           `json:"order_tag,omitempty"`
	Level           *int             `json:"level,omitempty"`
	PostOnlyAdjust  *bool            `json:"post_only_adjust,omitempty"`
}

// Validate applies the exchange's order parameter rules before any network
// call is made.
func (r *OrderRequest) Validate() error {
	if r.Symbol == "" || r.OrderType == "" || r.Side == "" {
		return errors.Wrap(orderly.ErrInvalidArgument, "symbol, order type and side are required")
	}

	r.OrderType = strings.ToUpper(r.OrderType)
	r.Side = strings.ToUpper(r.Side)

	if !validOrderTypes[r.OrderType] {
		return errors.Wrapf(orderly.ErrInvalidArgument, "invalid order type %q", r.OrderType)
	}
	if r.Side != "BUY" && r.Side != "SELL" {
		return errors.Wrapf(orderly.ErrInvalidArgument, "invalid side %q", r.Side)
	}
	if priceRequiredOrderTypes[r.OrderType] && r.OrderPrice == nil {
		return errors.Wrapf(orderly.ErrInvalidArgument, "order price is required for %s orders", r.OrderType)
	}
	if r.OrderQuantity == nil && r.OrderAmount == nil {
		return errors.Wrap(orderly.ErrInvalidArgument, "either order quantity or order amount is required")
	}
	if marketLikeOrderTypes[r.OrderType] {
		if r.Side == "SELL" && r.OrderAmount != nil {
			return errors.Wrapf(orderly.ErrInvalidArgument, "order amount is not supported for SELL %s orders", r.OrderType)
		}
		if r.Side == "BUY" && r.OrderQuantity != nil {
			return errors.Wrapf(orderly.ErrInvalidArgument, "order quantity is not supported for BUY %s orders", r.OrderType)
		}
	}

	return nil
}

// OrderResult is the exchange's answer to an order creation.
type OrderResult struct {
	OrderID       int64           `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	OrderType     string          `json:"order_type"`
	OrderPrice    decimal.Decimal `json:"order_price"`
	OrderQuantity decimal.Decimal `json:"order_quantity"`
	OrderAmount   decimal.Decimal `json:"order_amount"`
}

// CreateOrder submits an order. Authenticated.
func (c *Client) CreateOrder(ctx context.Context, creds *auth.Credentials, req *OrderRequest) (*OrderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var data OrderResult
	if err := c.doSigned(ctx, creds, http.MethodPost, "/v1/order", req, &data); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}
	return &data, nil
}

// CancelOrder cancels one order by exchange order id. Authenticated.
func (c *Client) CancelOrder(ctx context.Context, creds *auth.Credentials, orderID int64, symbol string) error {
	if orderID <= 0 || symbol == "" {
		return errors.Wrap(orderly.ErrInvalidArgument, "order id and symbol are required")
	}

	query := url.Values{}
	query.Set("order_id", strconv.FormatInt(orderID, 10))
	query.Set("symbol", symbol)

	if err := c.doSigned(ctx, creds, http.MethodDelete, "/v1/order?"+query.Encode(), nil, nil); err != nil {
		return errors.Wrap(err, "failed to cancel order")
	}
	return nil
}

// CancelAllOrders cancels every open order for a symbol. Authenticated.
func (c *Client) CancelAllOrders(ctx context.Context, creds *auth.Credentials, symbol string) error {
	if symbol == "" {
		return errors.Wrap(orderly.ErrInvalidArgument, "symbol is required")
	}

	query := url.Values{}
	query.Set("symbol", symbol)

	if err := c.doSigned(ctx, creds, http.MethodDelete, "/v1/orders?"+query.Encode(), nil, nil); err != nil {
		return errors.Wrap(err, "failed to cancel all orders")
	}
	return nil
}

// OrdersFilter narrows a GetOrders call. Zero values are omitted from the
// query string.
type OrdersFilter struct {
	Symbol    string
	Side      string
	OrderType string
	Status    string
	OrderTag  string
	StartTime int64
	EndTime   int64
	Page      int
	Size      int
	SortBy    string
}

func (f *OrdersFilter) query() string {
	if f == nil {
		return ""
	}

	query := url.Values{}
	set := func(key, value string) {
		if value != "" {
			query.Set(key, value)
		}
	}
	set("symbol", f.Symbol)
	set("side", strings.ToUpper(f.Side))
	set("order_type", strings.ToUpper(f.OrderType))
	set("status", strings.ToUpper(f.Status))
	set("order_tag", f.OrderTag)
	if f.StartTime > 0 {
		set("start_t", strconv.FormatInt(f.StartTime, 10))
	}
	if f.EndTime > 0 {
		set("end_t", strconv.FormatInt(f.EndTime, 10))
	}
	if f.Page > 0 {
		set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		set("size", strconv.Itoa(f.Size))
	}
	set("sort_by", f.SortBy)

	if len(query) == 0 {
		return ""
	}
	return "?" + query.Encode()
}

// GetOrders lists orders matching the filter. Authenticated.
func (c *Client) GetOrders(ctx context.Context, creds *auth.Credentials, filter *OrdersFilter) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.doSigned(ctx, creds, http.MethodGet, "/v1/orders"+filter.query(), nil, &data); err != nil {
		return nil, errors.Wrap(err, "failed to get orders")
	}
	return data, nil
}

// Holding is one token balance held on the exchange.
type Holding struct {
	Token     string          `json:"token"`
	Holding   decimal.Decimal `json:"holding"`
	Frozen    decimal.Decimal `json:"frozen"`
	Pending   decimal.Decimal `json:"pending_short"`
	UpdatedAt int64           `json:"updated_time"`
}

// GetHolding fetches the account's exchange-side balances. Authenticated.
func (c *Client) GetHolding(ctx context.Context, creds *auth.Credentials) ([]Holding, error) {
	var data struct {
		Holding []Holding `json:"holding"`
	}
	if err := c.doSigned(ctx, creds, http.MethodGet, "/v1/client/holding", nil, &data); err != nil {
		return nil, errors.Wrap(err, "failed to get holdings")
	}
	return data.Holding, nil
}

// GetPositions fetches the account's open positions. Authenticated.
func (c *Client) GetPositions(ctx context.Context, creds *auth.Credentials) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.doSigned(ctx, creds, http.MethodGet, "/v1/positions", nil, &data); err != nil {
		return nil, errors.Wrap(err, "failed to get positions")
	}
	return data, nil
}
