package keys_test

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/keys"
)

func TestGenerateProducesIndependentKeypairs(t *testing.T) {
	first, err := keys.Generate()
	require.NoError(t, err)
	second, err := keys.Generate()
	require.NoError(t, err)

	require.NotEqual(t, first.PublicKey, second.PublicKey)
	require.NotEqual(t, first.SeedHex(), second.SeedHex())

	require.True(t, strings.HasPrefix(first.PublicKey, keys.PublicKeyPrefix))
}

func TestSeedRoundTrip(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	restored, err := keys.FromSeedHex(kp.SeedHex())
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey, restored.PublicKey)

	// 0x prefix is tolerated on stored seeds.
	restored, err = keys.FromSeedHex("0x" + kp.SeedHex())
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey, restored.PublicKey)
}

func TestFromSeedHexRejectsBadInput(t *testing.T) {
	_, err := keys.FromSeedHex("zz")
	require.True(t, errors.Is(err, orderly.ErrInvalidArgument))

	_, err = keys.FromSeedHex("abcd")
	require.True(t, errors.Is(err, orderly.ErrInvalidArgument))
}

func TestPublicKeyRoundTrip(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)

	pub, err := keys.DecodePublicKey(kp.PublicKey)
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey, keys.EncodePublicKey(pub))

	// Signatures made with the pair verify under the decoded public key.
	message := []byte("1699999999999GET/v1/withdraw_nonce")
	require.True(t, ed25519.Verify(pub, message, kp.Sign(message)))
}

func TestDecodePublicKeyRejectsMissingPrefix(t *testing.T) {
	_, err := keys.DecodePublicKey("9VmYk3mCzK1sZ3B1")
	require.True(t, errors.Is(err, orderly.ErrInvalidArgument))
}
