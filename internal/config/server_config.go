package config

import (
	"time"

	"github.com/rs/zerolog"

	"github/starchild/orderly-bridge/internal/custody"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/util"
)

// EchoServer configures the HTTP listener.
type EchoServer struct {
	ListenAddress                  string
	HideInternalServerErrorDetails bool
	EnableRecoverMiddleware        bool
	EnableRequestIDMiddleware      bool
	EnableLoggerMiddleware         bool
}

// Orderly configures the exchange connection. AccountID and Secret carry
// the standing API key used for authenticated endpoints; Secret is the hex
// seed of the ed25519 key, never logged.
type Orderly struct {
	APIBaseURL string
	BrokerID   string
	ChainID    int64
	AccountID  string
	Secret     string `json:"-"`
}

// Privy configures the custody backend.
type Privy struct {
	BaseURL          string
	AppID            string
	AppSecret        string `json:"-"`
	AuthorizationKey string `json:"-"`
}

// Chain configures on-chain reads and confirmation waits.
type Chain struct {
	RPCURLOverride    string
	ConfirmTimeout    time.Duration
	AllowanceAttempts int
	AllowanceInterval time.Duration
}

// Logger configures the global zerolog setup.
type Logger struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

// Server is the master configuration, assembled from env once at startup.
type Server struct {
	Echo    EchoServer
	Orderly Orderly
	Privy   Privy
	Chain   Chain
	Logger  Logger
}

// DefaultServiceConfigFromEnv assembles the full server configuration from
// the environment, with development-safe defaults for everything that is
// not a credential.
func DefaultServiceConfigFromEnv() Server {
	return Server{
		Echo: EchoServer{
			ListenAddress:                  util.GetEnv("SERVER_ECHO_LISTEN_ADDRESS", ":3000"),
			HideInternalServerErrorDetails: util.GetEnvAsBool("SERVER_ECHO_HIDE_INTERNAL_SERVER_ERROR_DETAILS", true),
			EnableRecoverMiddleware:        util.GetEnvAsBool("SERVER_ECHO_ENABLE_RECOVER_MIDDLEWARE", true),
			EnableRequestIDMiddleware:      util.GetEnvAsBool("SERVER_ECHO_ENABLE_REQUEST_ID_MIDDLEWARE", true),
			EnableLoggerMiddleware:         util.GetEnvAsBool("SERVER_ECHO_ENABLE_LOGGER_MIDDLEWARE", true),
		},
		Orderly: Orderly{
			APIBaseURL: util.GetEnv("ORDERLY_API_BASE_URL", orderly.DefaultAPIBaseURL),
			BrokerID:   util.GetEnv("ORDERLY_BROKER_ID", orderly.DefaultBrokerID),
			ChainID:    util.GetEnvAsInt64("ORDERLY_CHAIN_ID", orderly.DefaultChainID),
			AccountID:  util.GetEnv("ORDERLY_ACCOUNT_ID", ""),
			Secret:     util.GetEnv("ORDERLY_SECRET", ""),
		},
		Privy: Privy{
			BaseURL:          util.GetEnv("PRIVY_BASE_URL", custody.DefaultPrivyBaseURL),
			AppID:            util.GetEnv("PRIVY_APP_ID", ""),
			AppSecret:        util.GetEnv("PRIVY_APP_SECRET", ""),
			AuthorizationKey: util.GetEnv("PRIVY_AUTHORIZATION_SECRET", ""),
		},
		Chain: Chain{
			RPCURLOverride:    util.GetEnv("CHAIN_RPC_URL", ""),
			ConfirmTimeout:    util.GetEnvAsDuration("CHAIN_CONFIRM_TIMEOUT", 2*time.Minute),
			AllowanceAttempts: util.GetEnvAsInt("CHAIN_ALLOWANCE_ATTEMPTS", 10),
			AllowanceInterval: util.GetEnvAsDuration("CHAIN_ALLOWANCE_INTERVAL", time.Second),
		},
		Logger: Logger{
			Level:              zerologLevelFromString(util.GetEnv("LOGGER_LEVEL", "info")),
			PrettyPrintConsole: util.GetEnvAsBool("LOGGER_PRETTY_PRINT_CONSOLE", false),
		},
	}
}

func zerologLevelFromString(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return parsed
}
