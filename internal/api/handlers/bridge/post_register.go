package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
)

func PostRegisterRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/register-orderly", postRegisterHandler(s))
}

func postRegisterHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body struct {
			WalletID string `json:"walletId"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}
		if body.WalletID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "walletId is required")
		}

		registration, err := s.Account.Register(c.Request().Context(), body.WalletID)
		if err != nil {
			return respondError(c, err)
		}

		return respond(c, map[string]any{
			"accountId": registration.AccountID,
			"address":   registration.Address,
		})
	}
}
