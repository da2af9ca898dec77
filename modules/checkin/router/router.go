package router

import (
	"go-coordinator/core/middleware"
	"go-coordinator/modules/checkin/controller"

	"github.com/labstack/echo/v4"
)

type CheckinRouter struct {
	controller *controller.CheckinController
}

func NewCheckinRouter(controller *controller.CheckinController) *CheckinRouter {
	return &CheckinRouter{controller: controller}
}

// Register mounts the websocket endpoint (authenticated per SEND) and the
// protected snapshot endpoint.
func (r *CheckinRouter) Register(e *echo.Echo, mw *middleware.Middleware) {
	group := e.Group("/checkin")
	group.GET("/ws", r.controller.Websocket)
	group.GET("/:id", r.controller.GetCheckins, mw.AuthMiddleware())
}
