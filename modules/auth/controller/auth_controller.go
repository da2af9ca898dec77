package controller

import (
	"net/http"

	"go-coordinator/core/controller"
	"go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/core/middleware"
	"go-coordinator/core/utils"
	"go-coordinator/modules/auth/dto"
	"go-coordinator/modules/auth/service"
	"go-coordinator/modules/auth/validator"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	AuthService service.AuthServiceInterface
	controller.BaseController
}

func NewAuthController(authService service.AuthServiceInterface) *AuthController {
	return &AuthController{
		AuthService:    authService,
		BaseController: controller.NewBaseController(),
	}
}

func origin(c echo.Context) middleware.AuditInfo {
	return middleware.AuditInfo{
		IP:     utils.ClientIP(c),
		Path:   c.Request().URL.Path,
		Method: c.Request().Method,
	}
}

// Login answers 200 {token} or 400. The failure body never says which part
// of the credentials was wrong.
func (controller *AuthController) Login(c echo.Context) error {
	requestData := new(dto.LoginRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if validator.ValidateLoginRequest(requestData).HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "invalid credentials")
	}

	response, err := controller.AuthService.Login(c.Request().Context(), requestData, origin(c))
	if err != nil {
		if err.Code == errors.ErrInvalidInput {
			return controller.BadRequest(err.Code, err.Message)
		}
		return controller.ErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// Validate always answers 200 {valid}.
func (controller *AuthController) Validate(c echo.Context) error {
	requestData := new(dto.ValidateRequest)
	if err := c.Bind(requestData); err != nil {
		logger.Debug("AuthController:Validate:Bind:Error", "error", err)
		return c.JSON(http.StatusOK, dto.ValidateResponse{Valid: false})
	}

	valid := controller.AuthService.ValidateToken(c.Request().Context(), requestData.Token, origin(c))
	return c.JSON(http.StatusOK, dto.ValidateResponse{Valid: valid})
}

func (controller *AuthController) RegisterAdministrator(c echo.Context) error {
	requestData := new(dto.RegisterAdministratorRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}

	validationResult := validator.ValidateRegisterAdministratorRequest(requestData)
	if validationResult.HasError() {
		return controller.BadRequest(errors.ErrInvalidInput, "invalid request data", validationResult)
	}

	response, err := controller.AuthService.RegisterAdministrator(c.Request().Context(), requestData)
	if err != nil {
		return controller.ErrorResponse(c, err)
	}

	logger.Info("AuthController:RegisterAdministrator:Success",
		"username", response.Username,
		"subject", middleware.Subject(c),
		"ip", utils.ClientIP(c),
	)
	return controller.CreatedResponse(c, "", response, "administrator created")
}

func (controller *AuthController) ListAdministrators(c echo.Context) error {
	response, err := controller.AuthService.ListAdministrators(c.Request().Context())
	if err != nil {
		return controller.ErrorResponse(c, err)
	}
	return controller.SuccessResponse(c, response, "administrators retrieved")
}
