package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"
	"github/starchild/orderly-bridge/internal/orderly"
)

// PublicKeyPrefix tags encoded verification keys with their algorithm.
const PublicKeyPrefix = "ed25519:"

// KeyPair is an exchange-API signing keypair. The exchange learns the public
// key through a key-grant message; the private key never leaves the caller,
// who is responsible for persisting it.
type KeyPair struct {
	// PublicKey is the base58-encoded verification key with the algorithm
	// prefix, e.g. "ed25519:9VmY...".
	PublicKey string

	privateKey ed25519.PrivateKey
}

// Generate produces a fresh keypair from a cryptographically secure random
// source. Every call yields an independent keypair.
func Generate() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate ed25519 key")
	}

	return &KeyPair{
		PublicKey:  EncodePublicKey(pub),
		privateKey: priv,
	}, nil
}

// FromSeedHex reconstructs a keypair from a stored 32-byte seed in hex form,
// with or without a 0x prefix.
func FromSeedHex(seedHex string) (*KeyPair, error) {
	seed, err := hex.DecodeString(strings.TrimPrefix(seedHex, "0x"))
	if err != nil {
		return nil, errors.Wrap(orderly.ErrInvalidArgument, "private key is not valid hex")
	}
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(orderly.ErrInvalidArgument, "private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)

	return &KeyPair{
		PublicKey:  EncodePublicKey(priv.Public().(ed25519.PublicKey)),
		privateKey: priv,
	}, nil
}

// EncodePublicKey renders a verification key in the exchange's textual form.
func EncodePublicKey(pub ed25519.PublicKey) string {
	return PublicKeyPrefix + base58.Encode(pub)
}

// DecodePublicKey parses the exchange's textual key form back into a raw
// verification key.
func DecodePublicKey(encoded string) (ed25519.PublicKey, error) {
	if !strings.HasPrefix(encoded, PublicKeyPrefix) {
		return nil, errors.Wrapf(orderly.ErrInvalidArgument, "public key %q lacks %q prefix", encoded, PublicKeyPrefix)
	}

	raw := base58.Decode(strings.TrimPrefix(encoded, PublicKeyPrefix))
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(orderly.ErrInvalidArgument, "decoded public key is %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}

	return ed25519.PublicKey(raw), nil
}

// Sign signs message bytes under the private key.
func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.privateKey, message)
}

// SeedHex returns the private seed in hex form for external persistence.
func (k *KeyPair) SeedHex() string {
	return hex.EncodeToString(k.privateKey.Seed())
}
