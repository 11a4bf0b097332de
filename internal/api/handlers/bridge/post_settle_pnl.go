package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
)

func PostSettlePnlRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/settle-pnl", postSettlePnlHandler(s))
}

func postSettlePnlHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds, err := credentials(s)
		if err != nil {
			return err
		}

		var body struct {
			WalletID string `json:"walletId"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}
		if body.WalletID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "walletId is required")
		}

		raw, err := s.Withdraw.SettlePnl(c.Request().Context(), creds, body.WalletID)
		if err != nil {
			return respondError(c, err)
		}

		return respond(c, raw)
	}
}
