package service

import (
	"context"
	"errors"
	"strings"

	"go-coordinator/core/clock"
	"go-coordinator/core/constants"
	appErrors "go-coordinator/core/errors"
	"go-coordinator/modules/article/dto"
	"go-coordinator/modules/article/entity"
	"go-coordinator/modules/article/repository"
)

type ArticleServiceInterface interface {
	Search(ctx context.Context, keywords string, published bool) ([]dto.ArticleSummaryResponse, *appErrors.AppError)
	// Get returns a published article to anyone and a draft only when
	// trusted is set.
	Get(ctx context.Context, id int64, trusted bool) (*dto.ArticleResponse, *appErrors.AppError)
	Create(ctx context.Context, req *dto.ArticleRequest) (*dto.ArticleResponse, *appErrors.AppError)
	Update(ctx context.Context, id int64, req *dto.ArticleRequest) (*dto.ArticleResponse, *appErrors.AppError)
	Delete(ctx context.Context, id int64) *appErrors.AppError
	Publish(ctx context.Context, id int64) (*dto.ArticleResponse, *appErrors.AppError)
}

type ArticleService struct {
	repo  repository.ArticleRepositoryInterface
	clock clock.Clock
}

func NewArticleService(repo repository.ArticleRepositoryInterface, clk clock.Clock) *ArticleService {
	if clk == nil {
		clk = clock.Real()
	}
	return &ArticleService{repo: repo, clock: clk}
}

func internalError(err error) *appErrors.AppError {
	return appErrors.NewAppError(appErrors.ErrInternalServer, "internal server error", err)
}

func notFound(err error) *appErrors.AppError {
	return appErrors.NewAppError(appErrors.ErrNotFound, "article not found", err)
}

func (s *ArticleService) Search(ctx context.Context, keywords string, published bool) ([]dto.ArticleSummaryResponse, *appErrors.AppError) {
	items, err := s.repo.Search(ctx, strings.Fields(keywords), published)
	if err != nil {
		return nil, internalError(err)
	}
	return dto.ToArticleSummaryResponses(items, constants.ArticleSummaryLength), nil
}

func (s *ArticleService) Get(ctx context.Context, id int64, trusted bool) (*dto.ArticleResponse, *appErrors.AppError) {
	a, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrArticleNotFound) {
		return nil, notFound(err)
	}
	if err != nil {
		return nil, internalError(err)
	}
	if !a.Published && !trusted {
		return nil, appErrors.NewAppError(appErrors.ErrForbidden, "forbidden", nil)
	}
	return dto.ToArticleResponse(a), nil
}

// fromRequest derives the searchable text from the content. Markup without
// any text, such as a lone image, is rejected like a blank body.
func fromRequest(req *dto.ArticleRequest) (*entity.Article, *appErrors.AppError) {
	text, err := plainText(req.Content)
	if err != nil {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidInput, "content is not valid HTML", err)
	}
	a := &entity.Article{
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Text:    text,
	}
	if a.Title == "" || strings.TrimSpace(a.Text) == "" {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidInput, "title and text must not be empty", nil)
	}
	return a, nil
}

func (s *ArticleService) Create(ctx context.Context, req *dto.ArticleRequest) (*dto.ArticleResponse, *appErrors.AppError) {
	a, appErr := fromRequest(req)
	if appErr != nil {
		return nil, appErr
	}
	a.CreatedAt = s.clock.Now().UTC()
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, internalError(err)
	}
	return dto.ToArticleResponse(a), nil
}

// Update edits the body of an article. A published article stays published
// and keeps its publication time.
func (s *ArticleService) Update(ctx context.Context, id int64, req *dto.ArticleRequest) (*dto.ArticleResponse, *appErrors.AppError) {
	a, appErr := fromRequest(req)
	if appErr != nil {
		return nil, appErr
	}
	a.ID = id
	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, notFound(err)
		}
		return nil, internalError(err)
	}
	return dto.ToArticleResponse(a), nil
}

func (s *ArticleService) Delete(ctx context.Context, id int64) *appErrors.AppError {
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err)
	}
	return nil
}

// Publish moves a draft to the published list, dated now. Anything other
// than an existing draft is invalid input.
func (s *ArticleService) Publish(ctx context.Context, id int64) (*dto.ArticleResponse, *appErrors.AppError) {
	a, err := s.repo.Publish(ctx, id, s.clock.Now().UTC())
	if errors.Is(err, repository.ErrArticleNotFound) {
		return nil, appErrors.NewAppError(appErrors.ErrInvalidInput, "no draft with this id", err)
	}
	if err != nil {
		return nil, internalError(err)
	}
	return dto.ToArticleResponse(a), nil
}
