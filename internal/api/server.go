package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github/starchild/orderly-bridge/internal/chain"
	"github/starchild/orderly-bridge/internal/config"
	"github/starchild/orderly-bridge/internal/custody"
	"github/starchild/orderly-bridge/internal/orderly/account"
	"github/starchild/orderly-bridge/internal/orderly/auth"
	"github/starchild/orderly-bridge/internal/orderly/client"
	"github/starchild/orderly-bridge/internal/orderly/deposit"
	"github/starchild/orderly-bridge/internal/orderly/keys"
	"github/starchild/orderly-bridge/internal/orderly/message"
	"github/starchild/orderly-bridge/internal/orderly/withdraw"
)

// Service aliases so handlers only import the api package.
type (
	AccountService  = account.Service
	DepositService  = deposit.Service
	WithdrawService = withdraw.Service
)

// ExchangeClient is the slice of the exchange REST client the read and
// trading handlers use directly.
type ExchangeClient interface {
	account.Exchange
	withdraw.Exchange
	CreateOrder(ctx context.Context, creds *auth.Credentials, req *client.OrderRequest) (*client.OrderResult, error)
	CancelOrder(ctx context.Context, creds *auth.Credentials, orderID int64, symbol string) error
	CancelAllOrders(ctx context.Context, creds *auth.Credentials, symbol string) error
	GetOrders(ctx context.Context, creds *auth.Credentials, filter *client.OrdersFilter) (json.RawMessage, error)
	GetHolding(ctx context.Context, creds *auth.Credentials) ([]client.Holding, error)
	GetPositions(ctx context.Context, creds *auth.Credentials) (json.RawMessage, error)
}

// Router groups the route namespaces handlers attach to.
type Router struct {
	Routes    []*echo.Route
	Root      *echo.Group
	APIBridge *echo.Group
}

// Server keeps all the dependencies. Components are populated by
// InitComponents for real runs and assigned directly in tests.
type Server struct {
	Config config.Server
	Echo   *echo.Echo
	Router *Router

	Custody     custody.Service
	Exchange    ExchangeClient
	Account     AccountService
	Deposit     DepositService
	Withdraw    WithdrawService
	Credentials *auth.Credentials
}

func NewServer(cfg config.Server) *Server {
	return &Server{Config: cfg}
}

// InitComponents wires the services off the configuration. It fails fast on
// unusable credentials and leaves Credentials nil when no API key is
// configured, which disables the authenticated read/trading endpoints only.
func (s *Server) InitComponents() error {
	privyClient, err := custody.NewPrivyClient(custody.PrivyConfig{
		BaseURL:          s.Config.Privy.BaseURL,
		AppID:            s.Config.Privy.AppID,
		AppSecret:        s.Config.Privy.AppSecret,
		AuthorizationKey: s.Config.Privy.AuthorizationKey,
	})
	if err != nil {
		return err
	}
	s.Custody = privyClient

	s.Exchange = client.New(s.Config.Orderly.APIBaseURL)

	builder, err := message.NewBuilder(s.Config.Orderly.BrokerID, s.Config.Orderly.ChainID)
	if err != nil {
		return err
	}

	s.Account = account.NewService(s.Custody, s.Exchange, builder)
	s.Withdraw = withdraw.NewService(s.Custody, s.Exchange, builder)
	s.Deposit = deposit.NewService(s.Custody, s.Config.Orderly.BrokerID,
		deposit.WithReaderFactory(func(network chain.Network) (deposit.ChainReader, error) {
			return chain.NewClientForNetwork(network, s.Config.Chain.RPCURLOverride)
		}),
		deposit.WithConfirmTimeout(s.Config.Chain.ConfirmTimeout),
		deposit.WithAllowancePolling(s.Config.Chain.AllowanceAttempts, s.Config.Chain.AllowanceInterval),
	)

	if s.Config.Orderly.AccountID != "" && s.Config.Orderly.Secret != "" {
		keyPair, err := keys.FromSeedHex(s.Config.Orderly.Secret)
		if err != nil {
			return err
		}
		s.Credentials = &auth.Credentials{
			AccountID: s.Config.Orderly.AccountID,
			KeyPair:   keyPair,
		}
	} else {
		log.Warn().Msg("No exchange API key configured, authenticated endpoints are disabled")
	}

	return nil
}

// Ready reports whether all mandatory components are initialized.
func (s *Server) Ready() bool {
	return s.Echo != nil &&
		s.Router != nil &&
		s.Custody != nil &&
		s.Exchange != nil &&
		s.Account != nil &&
		s.Deposit != nil &&
		s.Withdraw != nil
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not fully initialized")
	}
	return s.Echo.Start(s.Config.Echo.ListenAddress)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Warn().Msg("Shutting down server")
	if s.Echo != nil {
		return s.Echo.Shutdown(ctx)
	}
	return nil
}

// HTTPErrorHandler mirrors the echo default handler but keeps the public
// payload in the {"success":false,"error":...} envelope clients expect.
func (s *Server) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var httpError *echo.HTTPError
	if errors.As(err, &httpError) {
		code = httpError.Code
		if m, ok := httpError.Message.(string); ok {
			msg = m
		}
	} else if !s.Config.Echo.HideInternalServerErrorDetails {
		msg = err.Error()
	}

	if jsonErr := c.JSON(code, map[string]any{"success": false, "error": msg}); jsonErr != nil {
		log.Error().Err(jsonErr).Msg("Failed to write error response")
	}
}
