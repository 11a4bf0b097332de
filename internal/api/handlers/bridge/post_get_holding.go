package bridge

import (
	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
)

func PostGetHoldingRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/get-holding", postGetHoldingHandler(s))
}

func postGetHoldingHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds, err := credentials(s)
		if err != nil {
			return err
		}

		holdings, err := s.Exchange.GetHolding(c.Request().Context(), creds)
		if err != nil {
			return respondError(c, err)
		}

		return respond(c, map[string]any{"holding": holdings})
	}
}
