package repository

import (
	"context"
	"errors"
	"time"

	"go-coordinator/modules/article/entity"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleRepositoryInterface interface {
	// Search returns articles with the given publication state whose title or
	// text contains every keyword, newest first.
	Search(ctx context.Context, keywords []string, published bool) ([]entity.Article, error)
	GetByID(ctx context.Context, id int64) (*entity.Article, error)
	// Create stores a as a draft and sets its ID.
	Create(ctx context.Context, a *entity.Article) error
	// Update replaces title, content and text, keeping the publication state.
	// The stored row is copied back into a.
	Update(ctx context.Context, a *entity.Article) error
	// Delete removes the article. Deleting a missing article is not an error.
	Delete(ctx context.Context, id int64) error
	// Publish turns a draft into a published article dated now. It returns
	// ErrArticleNotFound unless id names a draft.
	Publish(ctx context.Context, id int64, now time.Time) (*entity.Article, error)
}
