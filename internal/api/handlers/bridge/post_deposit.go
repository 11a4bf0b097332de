package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/orderly/deposit"
)

func PostDepositRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/deposit-usdc", postDepositHandler(s))
}

func postDepositHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		var body struct {
			WalletID string `json:"walletId"`
			Amount   string `json:"amount"`
			ChainID  int64  `json:"chainId"`
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

		chainID := body.ChainID
		if chainID == 0 {
			chainID = s.Config.Orderly.ChainID
		}

		result, err := s.Deposit.Deposit(c.Request().Context(), &deposit.Request{
			WalletID: body.WalletID,
			ChainID:  chainID,
			Amount:   amount,
		})
		if err != nil {
			// Step and hashes identify where an interrupted flow stopped, so
			// the caller can resume against the same transaction.
			if result != nil {
				return c.JSON(statusForError(c, err), map[string]any{
					"success":       false,
					"error":         err.Error(),
					"step":          string(result.Step),
					"approveTxHash": hashOrEmpty(result.ApproveTxHash),
					"depositTxHash": hashOrEmpty(result.DepositTxHash),
				})
			}
			return respondError(c, err)
		}

		return respond(c, map[string]any{
			"accountId":     result.AccountID.Hex(),
			"amount":        result.Amount.String(),
			"fee":           result.Fee.String(),
			"approveTxHash": hashOrEmpty(result.ApproveTxHash),
			"depositTxHash": hashOrEmpty(result.DepositTxHash),
		})
	}
}
