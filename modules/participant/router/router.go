package router

import (
	"go-coordinator/core/middleware"
	"go-coordinator/modules/participant/controller"

	"github.com/labstack/echo/v4"
)

type ParticipantRouter struct {
	controller *controller.ParticipantController
}

func NewParticipantRouter(controller *controller.ParticipantController) *ParticipantRouter {
	return &ParticipantRouter{controller: controller}
}

func (r *ParticipantRouter) Register(e *echo.Echo, mw *middleware.Middleware) {
	participants := e.Group("/participants")
	participants.POST("", r.controller.RegisterParticipant)
	participants.POST("/verify", r.controller.VerifyParticipant)
	participants.GET("", r.controller.ListParticipants, mw.AuthMiddleware())
	participants.DELETE("/:id", r.controller.DeleteParticipant, mw.AuthMiddleware())
}
