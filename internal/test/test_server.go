package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/api/router"
	"github/starchild/orderly-bridge/internal/config"
)

// WithTestServer hands a routed but component-less server to the closure.
// Tests assign fakes to the service fields they exercise.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	s := api.NewServer(config.DefaultServiceConfigFromEnv())
	s.Config.Echo.EnableLoggerMiddleware = false
	router.Init(s)

	closure(s)
}

// PerformRequest runs a request through the server's router and returns the
// recorded response. A non-nil body is JSON encoded.
func PerformRequest(t *testing.T, s *api.Server, method, path string, body any, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for key, values := range headers {
		req.Header[key] = values
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}
