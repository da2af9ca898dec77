package controller

import (
	"fmt"
	"net/http"

	"go-coordinator/core/controller"
	"go-coordinator/core/errors"
	"go-coordinator/core/logger"
	"go-coordinator/core/middleware"
	"go-coordinator/core/utils"
	"go-coordinator/modules/article/dto"
	"go-coordinator/modules/article/service"
	"go-coordinator/modules/article/validator"

	"github.com/labstack/echo/v4"
)

type ArticleController struct {
	service service.ArticleServiceInterface
	controller.BaseController
}

func NewArticleController(service service.ArticleServiceInterface) *ArticleController {
	return &ArticleController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

func logModified(c echo.Context, action string, id int64) {
	logger.Info("ArticleController:"+action,
		"id", id,
		"subject", middleware.Subject(c),
		"ip", utils.ClientIP(c),
	)
}

func (ac *ArticleController) SearchPublished(c echo.Context) error {
	return ac.search(c, true)
}

func (ac *ArticleController) SearchDrafts(c echo.Context) error {
	return ac.search(c, false)
}

func (ac *ArticleController) search(c echo.Context, published bool) error {
	result, err := ac.service.Search(c.Request().Context(), c.QueryParam("keywords"), published)
	if err != nil {
		return ac.ErrorResponse(c, err)
	}
	return ac.SuccessResponse(c, result, "articles retrieved")
}

// GetArticle serves published articles to anyone. Drafts need the claims
// left by OptionalAuthMiddleware.
func (ac *ArticleController) GetArticle(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ac.BadRequest(errors.ErrInvalidInput, "invalid article id")
	}

	result, err := ac.service.Get(c.Request().Context(), id, middleware.TokenClaims(c) != nil)
	if err != nil {
		return ac.ErrorResponse(c, err)
	}
	return ac.SuccessResponse(c, result, "article retrieved")
}

func (ac *ArticleController) CreateArticle(c echo.Context) error {
	req := new(dto.ArticleRequest)
	if err := c.Bind(req); err != nil {
		return ac.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if result := validator.ValidateArticleRequest(req); result.HasError() {
		return ac.BadRequest(errors.ErrInvalidInput, "invalid request data", result)
	}

	created, err := ac.service.Create(c.Request().Context(), req)
	if err != nil {
		return ac.ErrorResponse(c, err)
	}

	logModified(c, "Created", created.ID)
	location := fmt.Sprintf("%s/%d", c.Request().URL.Path, created.ID)
	return ac.CreatedResponse(c, location, created, "article created")
}

func (ac *ArticleController) UpdateArticle(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ac.BadRequest(errors.ErrInvalidInput, "invalid article id")
	}

	req := new(dto.ArticleRequest)
	if err := c.Bind(req); err != nil {
		return ac.BadRequest(errors.ErrInvalidRequestData, "invalid request data")
	}
	if result := validator.ValidateArticleRequest(req); result.HasError() {
		return ac.BadRequest(errors.ErrInvalidInput, "invalid request data", result)
	}

	updated, err := ac.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return ac.ErrorResponse(c, err)
	}

	logModified(c, "Updated", id)
	return ac.SuccessResponse(c, updated, "article updated")
}

// DeleteArticle answers 204 whether or not the article existed.
func (ac *ArticleController) DeleteArticle(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ac.BadRequest(errors.ErrInvalidInput, "invalid article id")
	}

	if err := ac.service.Delete(c.Request().Context(), id); err != nil {
		return ac.ErrorResponse(c, err)
	}

	logModified(c, "Deleted", id)
	return c.NoContent(http.StatusNoContent)
}

func (ac *ArticleController) PublishArticle(c echo.Context) error {
	id, ok := utils.ParseID(c, "id")
	if !ok {
		return ac.BadRequest(errors.ErrInvalidInput, "invalid article id")
	}

	published, err := ac.service.Publish(c.Request().Context(), id)
	if err != nil {
		return ac.ErrorResponse(c, err)
	}

	logModified(c, "Published", id)
	return ac.SuccessResponse(c, published, "article published")
}
