package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-coordinator/core/database"
	"go-coordinator/core/logger"
	"go-coordinator/modules/article/entity"
)

const articleColumns = `id, title, content, text, published, created_at`

type ArticleRepository struct {
	db database.IDatabase
}

func NewArticleRepository(db database.IDatabase) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Search(ctx context.Context, keywords []string, published bool) ([]entity.Article, error) {
	args := []any{published}
	conditions := []string{"published = $1"}
	for _, kw := range keywords {
		args = append(args, "%"+escapeLike(kw)+"%")
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR text ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + articleColumns + ` FROM articles
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at DESC, id DESC`
	items := []entity.Article{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		logger.Error("ArticleRepository:Search:Error", "published", published, "error", err)
		return nil, err
	}
	return items, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*entity.Article, error) {
	var a entity.Article
	err := r.db.GetContext(ctx, &a, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		logger.Error("ArticleRepository:GetByID:Error", "id", id, "error", err)
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepository) Create(ctx context.Context, a *entity.Article) error {
	a.Published = false
	query := `
		INSERT INTO articles (title, content, text, published, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id
	`
	if err := r.db.GetContext(ctx, &a.ID, query, a.Title, a.Content, a.Text, a.CreatedAt); err != nil {
		logger.Error("ArticleRepository:Create:Error", "error", err)
		return err
	}
	return nil
}

func (r *ArticleRepository) Update(ctx context.Context, a *entity.Article) error {
	query := `
		UPDATE articles SET title = $2, content = $3, text = $4
		WHERE id = $1
		RETURNING ` + articleColumns
	err := r.db.GetContext(ctx, a, query, a.ID, a.Title, a.Content, a.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrArticleNotFound
	}
	if err != nil {
		logger.Error("ArticleRepository:Update:Error", "id", a.ID, "error", err)
		return err
	}
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		logger.Error("ArticleRepository:Delete:Error", "id", id, "error", err)
		return err
	}
	return nil
}

// Publish matches on the draft flag in the WHERE clause, so two concurrent
// publishes cannot both succeed.
func (r *ArticleRepository) Publish(ctx context.Context, id int64, now time.Time) (*entity.Article, error) {
	var a entity.Article
	query := `
		UPDATE articles SET published = TRUE, created_at = $2
		WHERE id = $1 AND published = FALSE
		RETURNING ` + articleColumns
	err := r.db.GetContext(ctx, &a, query, id, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		logger.Error("ArticleRepository:Publish:Error", "id", id, "error", err)
		return nil, err
	}
	return &a, nil
}
