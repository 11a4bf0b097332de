package handlers

import (
	"github.com/labstack/echo/v4"

	"github/starchild/orderly-bridge/internal/api"
	"github/starchild/orderly-bridge/internal/api/handlers/bridge"
	"github/starchild/orderly-bridge/internal/api/handlers/common"
)

// AttachAllRoutes binds every handler to the router.
func AttachAllRoutes(s *api.Server) []*echo.Route {
	return []*echo.Route{
		common.GetHealthRoute(s),

		bridge.PostRegisterRoute(s),
		bridge.PostOrderlyKeyRoute(s),
		bridge.PostDepositRoute(s),
		bridge.PostWithdrawRoute(s),
		bridge.PostSettlePnlRoute(s),
		bridge.PostCreateOrderRoute(s),
		bridge.PostCancelOrderRoute(s),
		bridge.PostGetOrdersRoute(s),
		bridge.PostGetHoldingRoute(s),
		bridge.PostGetPositionsRoute(s),
	}
}
