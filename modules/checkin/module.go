package checkin

import (
	"context"
	"fmt"

	"go-coordinator/core/cache"
	"go-coordinator/core/constants"
	"go-coordinator/core/middleware"
	"go-coordinator/core/token"
	"go-coordinator/modules/checkin/broadcast"
	"go-coordinator/modules/checkin/controller"
	"go-coordinator/modules/checkin/repository"
	"go-coordinator/modules/checkin/router"
	"go-coordinator/modules/checkin/service"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	Auth     token.TokenAuthenticator
	Registry repository.CheckinRegistry
	// Relay, when set, carries broadcasts between replicas.
	Relay            cache.Cache
	SubscriberBuffer int
	Options          controller.Options
}

// Module is the mounted check-in slice. Shutdown must be called to release
// open websocket sessions.
type Module struct {
	Service    *service.CheckinService
	Hub        *broadcast.Hub
	controller *controller.CheckinController
	stopRelay  context.CancelFunc
	relayDone  <-chan struct{}
}

func Init(e *echo.Echo, mw *middleware.Middleware, deps Deps) (*Module, error) {
	hub := broadcast.NewHub(deps.SubscriberBuffer)
	m := &Module{Hub: hub}

	var bc broadcast.Broadcaster = broadcast.NewLocalBroadcaster(hub)
	if deps.Relay != nil {
		ctx, cancel := context.WithCancel(context.Background())
		done, err := broadcast.NewRedisRelay(deps.Relay, constants.RedisChannelCheckins, hub).Start(ctx)
		if err != nil {
			cancel()
			hub.Close()
			return nil, fmt.Errorf("checkin: %w", err)
		}
		m.stopRelay, m.relayDone = cancel, done
		bc = broadcast.NewRedisBroadcaster(deps.Relay, constants.RedisChannelCheckins)
	}

	m.Service = service.NewCheckinService(deps.Auth, deps.Registry, bc)
	m.controller = controller.NewCheckinController(m.Service, hub, deps.Options)
	router.NewCheckinRouter(m.controller).Register(e, mw)
	return m, nil
}

func (m *Module) Shutdown() {
	if m.stopRelay != nil {
		m.stopRelay()
		<-m.relayDone
	}
	m.controller.Close()
	m.Hub.Close()
}
