package common

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
)

func GetHealthRoute(s *api.Server) *echo.Route {
	return s.Router.APIBridge.GET("/health", getHealthHandler(s))
}

func getHealthHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.Ready() {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"success": false,
				"message": "Server is not ready",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": "Server is running",
		})
	}
}
