package controller

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"go-coordinator/core/controller"
	coreErrors "go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/core/middleware"
	"go-coordinator/core/utils"
	"go-coordinator/modules/checkin/broadcast"
	"go-coordinator/modules/checkin/repository"
	"go-coordinator/modules/checkin/service"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type Options struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type CheckinController struct {
	service  service.CheckinServiceInterface
	hub      *broadcast.Hub
	opts     Options
	upgrader websocket.Upgrader

	// root is cancelled by Close to end every open session.
	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	controller.BaseController
}

func NewCheckinController(svc service.CheckinServiceInterface, hub *broadcast.Hub, opts Options) *CheckinController {
	root, cancel := context.WithCancel(context.Background())
	c := &CheckinController{
		service:        svc,
		hub:            hub,
		opts:           opts,
		root:           root,
		cancel:         cancel,
		BaseController: controller.NewBaseController(),
	}
	c.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		Subprotocols:    []string{"v12.stomp", "v11.stomp", "v10.stomp"},
		CheckOrigin:     c.checkOrigin,
	}
	return c
}

func (c *CheckinController) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(c.opts.AllowedOrigins) == 0 || slices.Contains(c.opts.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(c.opts.AllowedOrigins, origin)
}

// GetCheckins returns the current status of every participant of an event.
// The response is the bare list, not an envelope.
func (c *CheckinController) GetCheckins(ctx echo.Context) error {
	eventID, ok := utils.ParseID(ctx, "id")
	if !ok {
		return c.BadRequest(coreErrors.ErrInvalidInput, "invalid event id")
	}

	items, err := c.service.Snapshot(ctx.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.BadRequest(coreErrors.ErrInvalidInput, "unknown event")
		}
		return c.InternalServerError(coreErrors.ErrInternalServer, "failed to load check-ins")
	}

	logger.Info("CheckinController:GetCheckins:Success",
		"eventId", eventID,
		"subject", middleware.Subject(ctx),
		"ip", utils.ClientIP(ctx),
	)
	return ctx.JSON(http.StatusOK, items)
}

// Websocket upgrades the request and serves one STOMP session until either
// side closes it.
func (c *CheckinController) Websocket(ctx echo.Context) error {
	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		// The upgrader has already answered the request.
		logger.Warn("CheckinController:Websocket:Upgrade:Error", "ip", utils.ClientIP(ctx), "error", err)
		return nil
	}

	c.wg.Add(1)
	defer c.wg.Done()

	s := newSession(c.root, conn, c.service, c.hub, c.opts, utils.ClientIP(ctx))
	s.run()
	return nil
}

// Close ends every open session and waits for them to finish.
func (c *CheckinController) Close() {
	c.cancel()
	c.wg.Wait()
}
