package controller

import (
	"net/http"

	"go-coordinator/core/controller"
	"go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/core/middleware"
	"go-coordinator/core/utils"
	"go-coordinator/modules/participant/dto"
	"go-coordinator/modules/participant/service"
	"go-coordinator/modules/participant/validator"

	"github.com/labstack/echo/v4"
)

type ParticipantController struct {
	service service.ParticipantServiceInterface
	controller.BaseController
}

func NewParticipantController(service service.ParticipantServiceInterface) *ParticipantController {
	return &ParticipantController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

func (pc *ParticipantController) RegisterParticipant(c echo.Context) error {
	req := new(dto.ParticipantRequest)
	if err := c.Bind(req); err != nil {
		return pc.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if result := validator.ValidateParticipantRequest(req); result.HasError() {
		return pc.BadRequest(errors.ErrInvalidInput, "invalid request data", result)
	}

	participant, err := pc.service.Register(c.Request().Context(), req)
	if err != nil {
		return pc.ErrorResponse(c, err)
	}

	logger.Info("ParticipantController:Registered", "id", participant.ID, "ip", utils.ClientIP(c))
	return pc.SuccessResponse(c, participant, "participant registered")
}

func (pc *ParticipantController) ListParticipants(c echo.Context) error {
	result, err := pc.service.List(c.Request().Context())
	if err != nil {
		return pc.ErrorResponse(c, err)
	}
	return pc.SuccessResponse(c, result, "participants retrieved")
}

func (pc *ParticipantController) DeleteParticipant(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return pc.BadRequest(errors.ErrInvalidInput, "invalid participant id")
	}

	if err := pc.service.Delete(c.Request().Context(), id); err != nil {
		return pc.ErrorResponse(c, err)
	}

	logger.Info("ParticipantController:Deleted", "id", id, "subject", middleware.Subject(c), "ip", utils.ClientIP(c))
	return c.NoContent(http.StatusNoContent)
}

// VerifyParticipant answers 200 for a known email and 404 otherwise.
func (pc *ParticipantController) VerifyParticipant(c echo.Context) error {
	req := new(dto.VerifyRequest)
	if err := c.Bind(req); err != nil {
		return pc.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if result := validator.ValidateVerifyRequest(req); result.HasError() {
		return pc.BadRequest(errors.ErrInvalidInput, "invalid request data", result)
	}

	known, err := pc.service.Verify(c.Request().Context(), req.Email)
	if err != nil {
		logger.Error("ParticipantController:Verify:Error", "error", err)
		return pc.InternalServerError(errors.ErrInternalServer, "internal server error")
	}
	if !known {
		return pc.NotFound(errors.ErrNotFound, "participant not found")
	}
	return pc.SuccessResponse(c, dto.VerifyResponse{Email: req.Email, Verified: true}, "participant verified")
}
