package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/orderly/withdraw"
)

func PostWithdrawRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/withdraw-usdc", postWithdrawHandler(s))
}

func postWithdrawHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds, err := credentials(s)
		if err != nil {
			return err
		}

		var body struct {
			WalletID string `json:"walletId"`
			Amount   string `json:"amount"`
			Token    string `json:"token"`
			Receiver string `json:"receiver"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}
		if body.WalletID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "walletId is required")
		}

		amount, err := decimal.NewFromString(body.Amount)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "amount must be a decimal number")
		}

		result, err := s.Withdraw.Withdraw(c.Request().Context(), creds, &withdraw.Request{
			WalletID: body.WalletID,
			Token:    body.Token,
			Amount:   amount,
			Receiver: body.Receiver,
		})
		if err != nil {
			return respondError(c, err)
		}

		return respond(c, map[string]any{
			"token":         result.Token,
			"amount":        result.Amount.String(),
			"receiver":      result.Receiver,
			"withdrawNonce": result.WithdrawNonce,
			"response":      result.Raw,
		})
	}
}
