package controller

import (
	"fmt"
	"net/http"

	"go-coordinator/core/controller"
	"go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/core/middleware"
	"go-coordinator/core/utils"
	"go-coordinator/modules/event/dto"
	"go-coordinator/modules/event/service"
	"go-coordinator/modules/event/validator"

	"github.com/labstack/echo/v4"
)

type EventController struct {
	service service.EventServiceInterface
	controller.BaseController
}

func NewEventController(service service.EventServiceInterface) *EventController {
	return &EventController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

func logModified(c echo.Context, action string, id int64) {
	logger.Info("EventController:"+action,
		"id", id,
		"subject", middleware.Subject(c),
		"ip", utils.ClientIP(c),
	)
}

func (ec *EventController) SearchEvents(c echo.Context) error {
	result, err := ec.service.Search(c.Request().Context(), c.QueryParam("keywords"))
	if err != nil {
		return ec.ErrorResponse(c, err)
	}
	return ec.SuccessResponse(c, result, "events retrieved")
}

func (ec *EventController) GetEvent(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ec.BadRequest(errors.ErrInvalidInput, "invalid event id")
	}

	result, err := ec.service.Get(c.Request().Context(), id)
	if err != nil {
		return ec.ErrorResponse(c, err)
	}
	return ec.SuccessResponse(c, result, "event retrieved")
}

func (ec *EventController) CreateEvent(c echo.Context) error {
	req := new(dto.EventRequest)
	if err := c.Bind(req); err != nil {
		return ec.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if result := validator.ValidateEventRequest(req); result.HasError() {
		return ec.BadRequest(errors.ErrInvalidInput, "invalid request data", result)
	}

	created, err := ec.service.Create(c.Request().Context(), req)
	if err != nil {
		return ec.ErrorResponse(c, err)
	}

	logModified(c, "Created", created.ID)
	location := fmt.Sprintf("%s/%d", c.Request().URL.Path, created.ID)
	return ec.CreatedResponse(c, location, created, "event created")
}

func (ec *EventController) UpdateEvent(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ec.BadRequest(errors.ErrInvalidInput, "invalid event id")
	}

	req := new(dto.EventRequest)
	if err := c.Bind(req); err != nil {
		return ec.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if result := validator.ValidateEventRequest(req); result.HasError() {
		return ec.BadRequest(errors.ErrInvalidInput, "invalid request data", result)
	}

	updated, err := ec.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return ec.ErrorResponse(c, err)
	}

	logModified(c, "Updated", id)
	return ec.SuccessResponse(c, updated, "event updated")
}

// DeleteEvent answers 204 whether or not the event existed.
func (ec *EventController) DeleteEvent(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ec.BadRequest(errors.ErrInvalidInput, "invalid event id")
	}

	if err := ec.service.Delete(c.Request().Context(), id); err != nil {
		return ec.ErrorResponse(c, err)
	}

	logModified(c, "Deleted", id)
	return c.NoContent(http.StatusNoContent)
}

func (ec *EventController) Register(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ec.BadRequest(errors.ErrInvalidInput, "invalid event id")
	}

	req := new(dto.RegisterRequest)
	if err := c.Bind(req); err != nil {
		return ec.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if result := validator.ValidateRegisterRequest(req); result.HasError() {
		return ec.BadRequest(errors.ErrInvalidInput, "invalid request data", result)
	}

	result, err := ec.service.Register(c.Request().Context(), id, req.Email)
	if err != nil {
		if err.Code == errors.ErrForbidden {
			logger.Info("EventController:Register:Unsuccessful", "id", id, "email", req.Email, "ip", utils.ClientIP(c))
		}
		return ec.ErrorResponse(c, err)
	}
	return ec.SuccessResponse(c, result, "registered")
}
