package bridge

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/orderly/client"
)

func PostCreateOrderRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/create-order", postCreateOrderHandler(s))
}

func postCreateOrderHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds, err := credentials(s)
		if err != nil {
			return err
		}

		var body struct {
			Symbol          string           `json:"symbol"`
			OrderType       string           `json:"orderType"`
			Side            string           `json:"side"`
			OrderPrice      *decimal.Decimal `json:"orderPrice"`
			OrderQuantity   *decimal.Decimal `json:"orderQuantity"`
			OrderAmount     *decimal.Decimal `json:"orderAmount"`
			VisibleQuantity *decimal.Decimal `json:"visibleQuantity"`
			ReduceOnly      bool             `json:"reduceOnly"`
			Slippage        *decimal.Decimal `json:"slippage"`
			ClientOrderID   string           `json:"clientOrderId"`
			OrderTag        string           `json:"orderTag"`
			Level           *int             `json:"level"`
			PostOnlyAdjust  *bool            `json:"postOnlyAdjust"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}

		result, err := s.Exchange.CreateOrder(c.Request().Context(), creds, &client.OrderRequest{
			Symbol:          body.Symbol,
			OrderType:       body.OrderType,
			Side:            body.Side,
			OrderPrice:      body.OrderPrice,
			OrderQuantity:   body.OrderQuantity,
			OrderAmount:     body.OrderAmount,
			VisibleQuantity: body.VisibleQuantity,
			ReduceOnly:      body.ReduceOnly,
			Slippage:        body.Slippage,
			ClientOrderID:   body.ClientOrderID,
			OrderTag:        body.OrderTag,
			Level:           body.Level,
			PostOnlyAdjust:  body.PostOnlyAdjust,
		})
		if err != nil {
			return respondError(c, err)
		}

		return respond(c, result)
	}
}
