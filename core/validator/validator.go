package validator

import (
	"regexp"
	"strings"

	"go-coordinator/core/controller"
)

var emailPattern = regexp.MustCompile(`^.+@.+\..+$`)

// ValidationResult collects field errors for a request body.
type ValidationResult struct {
	Errors []controller.ValidationError `json:"errors"`
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{}
}

func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, controller.NewValidationError(field, message))
}

func (r *ValidationResult) HasError() bool {
	return len(r.Errors) > 0
}

// Required adds an error when value is blank.
func (r *ValidationResult) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		r.Add(field, field+" is required")
	}
}

func (r *ValidationResult) MaxLength(field, value string, max int) {
	if len(value) > max {
		r.Add(field, field+" is too long")
	}
}

func (r *ValidationResult) Email(field, value string) {
	if !IsEmail(value) {
		r.Add(field, field+" must be a valid email address")
	}
}

func IsEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}
