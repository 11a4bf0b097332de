package bridge

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
)

func PostCancelOrderRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/cancel-order", postCancelOrderHandler(s))
}

func postCancelOrderHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds, err := credentials(s)
		if err != nil {
			return err
		}

		var body struct {
			OrderID int64  `json:"orderId"`
			Symbol  string `json:"symbol"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}

		// Without an order id, cancel everything open on the symbol.
		if body.OrderID == 0 {
			if body.Symbol == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "symbol is required")
			}
			if err := s.Exchange.CancelAllOrders(c.Request().Context(), creds, body.Symbol); err != nil {
				return respondError(c, err)
			}
			return respond(c, map[string]any{"symbol": body.Symbol, "cancelled": "all"})
		}

		if err := s.Exchange.CancelOrder(c.Request().Context(), creds, body.OrderID, body.Symbol); err != nil {
			return respondError(c, err)
		}

		return respond(c, map[string]any{"orderId": body.OrderID, "symbol": body.Symbol})
	}
}
