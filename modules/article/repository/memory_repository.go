package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go-coordinator/modules/article/entity"
)

type MemoryArticleRepository struct {
	mu       sync.RWMutex
	nextID   int64
	articles map[int64]entity.Article
}

func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{articles: make(map[int64]entity.Article)}
}

func (r *MemoryArticleRepository) Search(_ context.Context, keywords []string, published bool) ([]entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []entity.Article{}
	for _, a := range r.articles {
		if a.Published == published && matchesAll(a, keywords) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b entity.Article) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func matchesAll(a entity.Article, keywords []string) bool {
	title, text := strings.ToLower(a.Title), strings.ToLower(a.Text)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if !strings.Contains(title, kw) && !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

func (r *MemoryArticleRepository) GetByID(_ context.Context, id int64) (*entity.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.articles[id]
	if !ok {
		return nil, ErrArticleNotFound
	}
	return &a, nil
}

func (r *MemoryArticleRepository) Create(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	a.ID = r.nextID
	a.Published = false
	r.articles[a.ID] = *a
	return nil
}

func (r *MemoryArticleRepository) Update(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.articles[a.ID]
	if !ok {
		return ErrArticleNotFound
	}
	stored.Title, stored.Content, stored.Text = a.Title, a.Content, a.Text
	r.articles[a.ID] = stored
	*a = stored
	return nil
}

func (r *MemoryArticleRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.articles, id)
	return nil
}

func (r *MemoryArticleRepository) Publish(_ context.Context, id int64, now time.Time) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[id]
	if !ok || a.Published {
		return nil, ErrArticleNotFound
	}
	a.Published = true
	a.CreatedAt = now
	r.articles[id] = a
	return &a, nil
}
