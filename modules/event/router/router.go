package router

import (
	"go-coordinator/core/middleware"
	"go-coordinator/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	controller *controller.EventController
}

func NewEventRouter(controller *controller.EventController) *EventRouter {
	return &EventRouter{controller: controller}
}

func (r *EventRouter) Register(e *echo.Echo, mw *middleware.Middleware) {
	events := e.Group("/events")
	events.GET("", r.controller.SearchEvents)
	events.POST("/register/:id", r.controller.Register)

	administer := events.Group("/administer", mw.AuthMiddleware())
	administer.POST("", r.controller.CreateEvent)
	administer.GET("/:id", r.controller.GetEvent)
	administer.PUT("/:id", r.controller.UpdateEvent)
	administer.DELETE("/:id", r.controller.DeleteEvent)
}
