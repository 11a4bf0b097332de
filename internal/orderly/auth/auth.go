// Package auth implements the exchange's detached-signature request
// authentication. It is fully disjoint from the wallet-custody signing
// protocol: request signatures are made with the exchange-API ed25519 key,
// never with wallet key material.
package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/keys"
)

// Request authentication headers.
const (
	HeaderTimestamp = "orderly-timestamp"
	HeaderAccountID = "orderly-account-id"
	HeaderKey       = "orderly-key"
	HeaderSignature = "orderly-signature"
)

// Credentials identifies an account and carries the keypair that signs its
// requests. The keypair is read-only here; rotation means running the
// key-grant flow again.
type Credentials struct {
	AccountID string
	KeyPair   *keys.KeyPair
}

// Validate reports whether the credentials are usable.
func (c *Credentials) Validate() error {
	if c == nil || c.AccountID == "" || c.KeyPair == nil {
		return errors.Wrap(orderly.ErrInvalidArgument, "account id and api keypair are required")
	}
	return nil
}

// Signer signs outbound exchange requests. The timestamp is taken from the
// clock at signing time on every call; signatures are single-use and must
// never be recomputed from a cached timestamp.
type Signer struct {
	now func() time.Time
}

// NewSigner returns a Signer backed by the wall clock.
func NewSigner() *Signer {
	return &Signer{now: time.Now}
}

// NewSignerWithClock returns a Signer with an injected clock, for tests.
func NewSignerWithClock(now func() time.Time) *Signer {
	return &Signer{now: now}
}

// Sign produces the headers for one authenticated request. The signing
// string is timestampMs + METHOD + path + body, signed with the account's
// ed25519 key and base64-encoded. path must include the query string when
// one is sent, since the exchange verifies against the full request target.
func (s *Signer) Sign(creds *Credentials, method, path string, body []byte) (http.Header, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	method = strings.ToUpper(method)

	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	message := SigningString(timestamp, method, path, body)
	signature := base64.StdEncoding.EncodeToString(creds.KeyPair.Sign([]byte(message)))

	header := http.Header{}
	header.Set("Content-Type", ContentType(method))
	header.Set(HeaderTimestamp, timestamp)
	header.Set(HeaderAccountID, creds.AccountID)
	header.Set(HeaderKey, creds.KeyPair.PublicKey)
	header.Set(HeaderSignature, signature)

	return header, nil
}

// SigningString assembles the canonical byte string a request signature
// commits to.
func SigningString(timestamp, method, path string, body []byte) string {
	return timestamp + method + path + string(body)
}

// Verify checks a detached signature against the signing string it claims to
// cover.
func Verify(pub ed25519.PublicKey, timestamp, method, path string, body []byte, signatureB64 string) bool {
	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, []byte(SigningString(timestamp, strings.ToUpper(method), path, body)), signature)
}

// ContentType returns the body content type the exchange expects per method:
// form-encoded for GET and DELETE, JSON otherwise.
func ContentType(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodDelete:
		return "application/x-www-form-urlencoded"
	default:
		return "application/json"
	}
}
