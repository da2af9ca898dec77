package validator

import (
	"go-coordinator/core/validator"
	"go-coordinator/modules/article/dto"
)

const maxTitleLength = 255

func ValidateArticleRequest(req *dto.ArticleRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.Required("title", req.Title)
	result.MaxLength("title", req.Title, maxTitleLength)
	result.Required("content", req.Content)
	return result
}
