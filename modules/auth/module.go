package auth

import (
	"context"
	"fmt"
	"time"

	"go-coordinator/core/cache"
	"go-coordinator/core/clock"
	"go-coordinator/core/config"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token"
	"go-coordinator/modules/auth/controller"
	"go-coordinator/modules/auth/repository"
	"go-coordinator/modules/auth/router"
	"go-coordinator/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	Repository repository.AdministratorRepositoryInterface
	Cache      cache.Cache
	Issuer     *token.Issuer
	Auth       token.TokenAuthenticator
	Clock      clock.Clock
	Lifespan   time.Duration
	Admins     []config.AdminSeed
}

func Init(ctx context.Context, e *echo.Echo, mw *middleware.Middleware, deps Deps) (service.AuthServiceInterface, error) {
	authService := service.NewAuthService(deps.Repository, deps.Cache, deps.Issuer, deps.Auth, deps.Clock, deps.Lifespan)
	if err := authService.SeedAdministrators(ctx, deps.Admins); err != nil {
		return nil, fmt.Errorf("auth: seeding administrators: %w", err)
	}

	ctrl := controller.NewAuthController(authService)
	router.NewAuthRouter(ctrl).Register(e, mw)
	return authService, nil
}
