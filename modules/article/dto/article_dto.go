package dto

import (
	"time"

	"go-coordinator/modules/article/entity"
)

type ArticleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ArticleSummaryResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// ArticleResponse carries Created as the creation time of a draft or the
// publication time of a published article.
type ArticleResponse struct {
	ID        int64     `json:"id"`
	Created   time.Time `json:"created"`
	Published bool      `json:"published"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
}

func ToArticleResponse(a *entity.Article) *ArticleResponse {
	return &ArticleResponse{
		ID:        a.ID,
		Created:   a.CreatedAt,
		Published: a.Published,
		Title:     a.Title,
		Content:   a.Content,
	}
}

// ToArticleSummaryResponses cuts each article's text to at most chars runes.
func ToArticleSummaryResponses(items []entity.Article, chars int) []ArticleSummaryResponse {
	out := make([]ArticleSummaryResponse, 0, len(items))
	for _, item := range items {
		summary := []rune(item.Text)
		if len(summary) > chars {
			summary = summary[:chars]
		}
		out = append(out, ArticleSummaryResponse{ID: item.ID, Title: item.Title, Summary: string(summary)})
	}
	return out
}
