package participant

import (
	"go-coordinator/core/clock"
	"go-coordinator/core/middleware"
	"go-coordinator/modules/participant/controller"
	"go-coordinator/modules/participant/repository"
	"go-coordinator/modules/participant/router"
	"go-coordinator/modules/participant/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, mw *middleware.Middleware, repo repository.ParticipantRepositoryInterface, clk clock.Clock) service.ParticipantServiceInterface {
	participantService := service.NewParticipantService(repo, clk)
	ctrl := controller.NewParticipantController(participantService)
	router.NewParticipantRouter(ctrl).Register(e, mw)
	return participantService
}
