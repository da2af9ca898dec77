package event

import (
	"go-coordinator/core/clock"
	"go-coordinator/core/middleware"
	"go-coordinator/modules/event/client"
	"go-coordinator/modules/event/controller"
	"go-coordinator/modules/event/repository"
	"go-coordinator/modules/event/router"
	"go-coordinator/modules/event/service"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	Repository repository.EventRepositoryInterface
	Verifier   client.ParticipantVerifier
	Clock      clock.Clock
}

func Init(e *echo.Echo, mw *middleware.Middleware, deps Deps) service.EventServiceInterface {
	eventService := service.NewEventService(deps.Repository, deps.Verifier, deps.Clock)
	ctrl := controller.NewEventController(eventService)
	router.NewEventRouter(ctrl).Register(e, mw)
	return eventService
}
