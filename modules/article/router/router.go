package router

import (
	"go-coordinator/core/middleware"
	"go-coordinator/modules/article/controller"

	"github.com/labstack/echo/v4"
)

type ArticleRouter struct {
	controller *controller.ArticleController
}

func NewArticleRouter(controller *controller.ArticleController) *ArticleRouter {
	return &ArticleRouter{controller: controller}
}

func (r *ArticleRouter) Register(e *echo.Echo, mw *middleware.Middleware) {
	auth := mw.AuthMiddleware()

	articles := e.Group("/articles")
	articles.GET("/published", r.controller.SearchPublished)
	articles.GET("/drafts", r.controller.SearchDrafts, auth)

	administer := articles.Group("/administer")
	administer.GET("/:id", r.controller.GetArticle, mw.OptionalAuthMiddleware())
	administer.POST("", r.controller.CreateArticle, auth)
	administer.PUT("/:id", r.controller.UpdateArticle, auth)
	administer.DELETE("/:id", r.controller.DeleteArticle, auth)
	administer.POST("/:id/publish", r.controller.PublishArticle, auth)
}
