package validator

import (
	"go-coordinator/core/validator"
	"go-coordinator/modules/event/dto"
)

const maxTitleLength = 255

func ValidateEventRequest(req *dto.EventRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.Required("title", req.Title)
	result.MaxLength("title", req.Title, maxTitleLength)
	return result
}

func ValidateRegisterRequest(req *dto.RegisterRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.Email("email", req.Email)
	return result
}
