// Package client wraps the exchange's REST API. Authenticated calls attach
// the detached request signature computed by the auth package; HTTP-level
// and payload-level rejections both surface as *orderly.ExchangeError with
// the raw response attached.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/auth"
)

const defaultRequestTimeout = 30 * time.Second

// Client is an exchange REST client. It is safe for concurrent use; requests
// carry no shared mutable state beyond the underlying http.Client.
type Client struct {
	baseURL string
	http    *http.Client
	signer  *auth.Signer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSigner replaces the request signer, mainly to inject a clock in tests.
func WithSigner(s *auth.Signer) Option {
	return func(c *Client) { c.signer = s }
}

// New creates a Client against the given API base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultRequestTimeout},
		signer:  auth.NewSigner(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the exchange's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs an unauthenticated request. path includes the query string
// when there is one.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, body, out, nil)
}

// doSigned performs an authenticated request. The body is serialized exactly
// once; the same bytes are signed and transmitted, so the signature always
// matches what the exchange verifies.
func (c *Client) doSigned(ctx context.Context, creds *auth.Credentials, method, path string, body, out any) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	return c.send(ctx, method, path, body, out, creds)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any, creds *auth.Credentials) error {
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

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}

	if creds != nil {
		header, err := c.signer.Sign(creds, method, path, payload)
		if err != nil {
			return errors.Wrap(err, "failed to sign request")
		}
		for key, values := range header {
			req.Header[key] = values
		}
	} else {
		req.Header.Set("Content-Type", auth.ContentType(method))
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "exchange request %s %s failed", method, path)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read exchange response")
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", res.StatusCode).
			Msg("Exchange returned non-2xx status")

		return &orderly.ExchangeError{
			Status:  res.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			RawBody: raw,
		}
	}

	if decodeErr != nil {
		return errors.Wrap(decodeErr, "failed to decode exchange response")
	}

	if !env.Success {
		return &orderly.ExchangeError{
			Status:  res.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			RawBody: raw,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "failed to decode exchange response data")
		}
	}

	return nil
}
