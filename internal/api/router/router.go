package router

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/api/handlers"
)

// Init builds the echo instance, installs middleware per config and
// attaches all routes.
func Init(s *api.Server) {
	s.Echo = echo.New()
	s.Echo.Debug = false
	s.Echo.HideBanner = true
	s.Echo.HTTPErrorHandler = s.HTTPErrorHandler

	if s.Config.Echo.EnableRecoverMiddleware {
		s.Echo.Use(middleware.Recover())
	}
	if s.Config.Echo.EnableRequestIDMiddleware {
		s.Echo.Use(middleware.RequestID())
	}
	if s.Config.Echo.EnableLoggerMiddleware {
		s.Echo.Use(middleware.Logger())
	}

	s.Router = &api.Router{
		Root:      s.Echo.Group(""),
		APIBridge: s.Echo.Group("/api"),
	}

	s.Router.Routes = handlers.AttachAllRoutes(s)
}
