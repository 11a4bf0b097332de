package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
)

func PostOrderlyKeyRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/add-orderly-key", postOrderlyKeyHandler(s))
}

func postOrderlyKeyHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body struct {
			WalletID string `json:"walletId"`
			Scope    string `json:"scope"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}
		if body.WalletID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "walletId is required")
		}

		grant, err := s.Account.GrantKey(c.Request().Context(), body.WalletID, body.Scope, 0)
		if err != nil {
			return respondError(c, err)
		}

		// The seed is returned exactly once; it is never persisted or
		// logged server-side.
		return respond(c, map[string]any{
			"accountId":     grant.AccountID,
			"orderlyKey":    grant.KeyPair.PublicKey,
			"orderlySecret": grant.KeyPair.SeedHex(),
			"scope":         grant.Scope,
			"expiration":    grant.Expiration.UnixMilli(),
		})
	}
}
