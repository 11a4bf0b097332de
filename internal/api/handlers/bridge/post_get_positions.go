package bridge

import (
	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
)

func PostGetPositionsRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.POST("/get-positions", postGetPositionsHandler(s))
}

func postGetPositionsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		creds, err := credentials(s)
		if err != nil {
			return err
		}

		raw, err := s.Exchange.GetPositions(c.Request().Context(), creds)
		if err != nil {
			return respondError(c, err)
		}

		return respond(c, raw)
	}
}
