package validator

import (
	"regexp"

	"go-coordinator/core/validator"
	"go-coordinator/modules/auth/dto"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 64
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

func ValidateLoginRequest(req *dto.LoginRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.Required("username", req.Username)
	result.Required("password", req.Password)
	return result
}

func ValidateRegisterAdministratorRequest(req *dto.RegisterAdministratorRequest) *validator.ValidationResult {
	result := validator.NewValidationResult()
	result.Required("username", req.Username)
	result.MaxLength("username", req.Username, maxUsernameLength)
	if req.Username != "" && !usernamePattern.MatchString(req.Username) {
		result.Add("username", "username may only contain letters, digits, '.', '_' and '-'")
	}
	if len(req.Password) < minPasswordLength {
		result.Add("password", "password must be at least 8 characters")
	}
	result.MaxLength("password", req.Password, maxPasswordLength)
	return result
}
