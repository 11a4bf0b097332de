package bridge

import (
	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/orderly/client"
)

func PostGetOrdersRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/get-orders", postGetOrdersHandler(s))
}

func postGetOrdersHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds, err := credentials(s)
		if err != nil {
			return err
		}

		var body struct {
			Symbol    string `json:"symbol"`
			Side      string `json:"side"`
			OrderType string `json:"orderType"`
			Status    string `json:"status"`
			OrderTag  string `json:"orderTag"`
			StartTime int64  `json:"startTime"`
			EndTime   int64  `json:"endTime"`
			Page      int    `json:"page"`
			Size      int    `json:"size"`
			SortBy    string `json:"sortBy"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}

		raw, err := s.Exchange.GetOrders(c.Request().Context(), creds, &client.OrdersFilter{
			Symbol:    body.Symbol,
			Side:      body.Side,
			OrderType: body.OrderType,
			Status:    body.Status,
			OrderTag:  body.OrderTag,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
			Page:      body.Page,
			Size:      body.Size,
			SortBy:    body.SortBy,
		})
		if err != nil {
			return respondError(c, err)
		}

		return respond(c, raw)
	}
}
