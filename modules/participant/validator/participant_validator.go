package validator

import (
	"go-coordinator/core/validator"
	"go-coordinator/modules/participant/dto"
)

const (
	maxNameLength  = 128
	maxPhoneLength = 64
)

func ValidateParticipantRequest(req *dto.ParticipantRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.Required("firstName", req.FirstName)
	result.MaxLength("firstName", req.FirstName, maxNameLength)
	result.Required("lastName", req.LastName)
	result.MaxLength("lastName", req.LastName, maxNameLength)
	result.Email("email", req.Email)
	result.MaxLength("phoneNumber", req.PhoneNumber, maxPhoneLength)
	return result
}

func ValidateVerifyRequest(req *dto.VerifyRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.Required("email", req.Email)
	return result
}
