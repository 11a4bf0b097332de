package account

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github/starchild/orderly-bridge/internal/custody"
	"github/starchild/orderly-bridge/internal/orderly/client"
	"github/starchild/orderly-bridge/internal/orderly/identity"
	"github/starchild/orderly-bridge/internal/orderly/keys"
	"github/starchild/orderly-bridge/internal/orderly/message"
)

// Exchange is the slice of the exchange API the account service uses.
type Exchange interface {
	RegistrationNonce(ctx context.Context) (string, error)
	RegisterAccount(ctx context.Context, req *client.SignedRequest) (*client.RegisterAccountResult, error)
	AddKey(ctx context.Context, req *client.SignedRequest) (*client.AddKeyResult, error)
}

// Registration is the outcome of registering a wallet with the exchange.
type Registration struct {
	AccountID string
	Address   string
}

// KeyGrant is the outcome of granting a fresh API key. KeyPair holds the
// private half; the caller owns persisting it, it is never stored here.
type KeyGrant struct {
	KeyPair    *keys.KeyPair
	AccountID  string
	Scope      string
	Expiration time.Time
}

// Service registers custodial wallets with the exchange and grants them
// API keys.
type Service interface {
	// Register derives the wallet's exchange account by signing a
	// registration message with the custodied key.
	Register(ctx context.Context, walletID string) (*Registration, error)

	// GrantKey generates a fresh API key pair and announces its public half
	// to the exchange under the given scope.
	GrantKey(ctx context.Context, walletID, scope string, validity time.Duration) (*KeyGrant, error)
}

type service struct {
	custody  custody.Service
	exchange Exchange
	builder  *message.Builder
}

//nolint:ireturn
func NewService(custodyService custody.Service, exchange Exchange, builder *message.Builder) Service {
	return &service{
		custody:  custodyService,
		exchange: exchange,
		builder:  builder,
	}
}

func (s *service) Register(ctx context.Context, walletID string) (*Registration, error) {
	address, err := s.custody.ResolveAddress(ctx, walletID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve wallet address")
	}

	nonce, err := s.exchange.RegistrationNonce(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch registration nonce")
	}

	payload, err := s.builder.Registration(nonce)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build registration message")
	}

	signature, err := s.custody.SignTypedData(ctx, walletID, payload.TypedData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign registration message")
	}
	if err := custody.ValidateSignatureHex(signature); err != nil {
		return nil, errors.Wrap(err, "custody service returned an unusable signature")
	}

	result, err := s.exchange.RegisterAccount(ctx, &client.SignedRequest{
		Message:     payload.Message,
		Signature:   signature,
		UserAddress: address.Hex(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to register account")
	}

	// The exchange derives the account ID from (address, broker); verify the
	// local derivation agrees so downstream auth headers cannot drift.
	derived, err := identity.AccountID(address, s.builder.BrokerID())
	if err == nil && result.AccountID != derived.Hex() {
		log.Warn().
			Str("wallet_id", walletID).
			Str("exchange_account_id", result.AccountID).
			Str("derived_account_id", derived.Hex()).
			Msg("Exchange account ID does not match local derivation")
	}

	log.Info().
		Str("wallet_id", walletID).
		Str("address", address.Hex()).
		Str("account_id", result.AccountID).
		Msg("Account registered")

	return &Registration{
		AccountID: result.AccountID,
		Address:   address.Hex(),
	}, nil
}

func (s *service) GrantKey(ctx context.Context, walletID, scope string, validity time.Duration) (*KeyGrant, error) {
	address, err := s.custody.ResolveAddress(ctx, walletID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve wallet address")
	}

	keyPair, err := keys.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate API key pair")
	}

	payload, err := s.builder.AddKey(keyPair.PublicKey, scope, validity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build key-grant message")
	}

	signature, err := s.custody.SignTypedData(ctx, walletID, payload.TypedData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign key-grant message")
	}
	if err := custody.ValidateSignatureHex(signature); err != nil {
		return nil, errors.Wrap(err, "custody service returned an unusable signature")
	}

	if _, err := s.exchange.AddKey(ctx, &client.SignedRequest{
		Message:     payload.Message,
		Signature:   signature,
		UserAddress: address.Hex(),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to announce API key")
	}

	body, ok := payload.Message.(*message.AddKeyMessage)
	if !ok {
		return nil, errors.New("unexpected key-grant message type")
	}

	accountID, err := identity.AccountID(address, s.builder.BrokerID())
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive account ID")
	}

	grant := &KeyGrant{
		KeyPair:    keyPair,
		AccountID:  accountID.Hex(),
		Scope:      body.Scope,
		Expiration: time.UnixMilli(body.Expiration),
	}

	log.Info().
		Str("wallet_id", walletID).
		Str("account_id", grant.AccountID).
		Str("orderly_key", keyPair.PublicKey).
		Str("scope", grant.Scope).
		Time("expiration", grant.Expiration).
		Msg("API key granted")

	return grant, nil
}
