package bridge

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/orderly"
	"github/starchild/orderly-bridge/internal/orderly/auth"
	"github/starchild/orderly-bridge/internal/util"
)

func respond(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": data})
}

// statusForError maps the failure taxonomy onto HTTP statuses. Exchange
// rejections and chain trouble are upstream faults, not ours.
func statusForError(c echo.Context, err error) int {
	log := util.LogFromEchoContext(c)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, orderly.ErrInvalidArgument),
		errors.Is(err, orderly.ErrInvalidAmount),
		errors.Is(err, orderly.ErrMissingNonce),
		errors.Is(err, orderly.ErrInsufficientFunds):
		status = http.StatusBadRequest
	case errors.Is(err, orderly.ErrConfirmationTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, orderly.ErrAllowanceNotObserved),
		errors.Is(err, orderly.ErrChainCallFailed):
		status = http.StatusBadGateway
	}

	if rejection, ok := orderly.IsExchangeRejected(err); ok {
		status = http.StatusBadGateway
		log.Warn().Int("exchange_code", rejection.Code).Err(err).Msg("Exchange rejected request")
	} else if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	} else {
		log.Warn().Err(err).Msg("Request rejected")
	}

	return status
}

func respondError(c echo.Context, err error) error {
	return c.JSON(statusForError(c, err), map[string]any{"success": false, "error": err.Error()})
}

func hashOrEmpty(hash common.Hash) string {
	if hash == (common.Hash{}) {
		return ""
	}
	return hash.Hex()
}

func bindBody(c echo.Context, body any) error {
	if err := c.Bind(body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	return nil
}

// credentials returns the standing API-key credentials, or a 503 when the
// server was started without one.
func credentials(s *api.Server) (*auth.Credentials, error) {
	if s.Credentials == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "no exchange API key configured")
	}
	return s.Credentials, nil
}
