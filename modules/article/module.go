package article

import (
	"go-coordinator/core/clock"
	"go-coordinator/core/middleware"
	"go-coordinator/modules/article/controller"
	"go-coordinator/modules/article/repository"
	"go-coordinator/modules/article/router"
	"go-coordinator/modules/article/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, mw *middleware.Middleware, repo repository.ArticleRepositoryInterface, clk clock.Clock) service.ArticleServiceInterface {
	articleService := service.NewArticleService(repo, clk)
	ctrl := controller.NewArticleController(articleService)
	router.NewArticleRouter(ctrl).Register(e, mw)
	return articleService
}
