package router

import (
	"go-coordinator/core/middleware"
	"go-coordinator/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(controller *controller.AuthController) *AuthRouter {
	return &AuthRouter{controller: controller}
}

func (r *AuthRouter) Register(e *echo.Echo, mw *middleware.Middleware) {
	e.POST("/login", r.controller.Login)
	e.POST("/validate", r.controller.Validate)

	admins := e.Group("/administrators", mw.AuthMiddleware())
	admins.GET("", r.controller.ListAdministrators)
	admins.POST("", r.controller.RegisterAdministrator)
}
