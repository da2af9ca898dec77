package validator

import (
	"strings"
	"testing"

	"go-coordinator/modules/auth/dto"
)

func TestValidateRegisterAdministratorRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    dto.RegisterAdministratorRequest
		errors int
	}{
		{"valid", dto.RegisterAdministratorRequest{Username: "ops.admin", Password: "long-enough"}, 0},
		{"short password", dto.RegisterAdministratorRequest{Username: "ops", Password: "short"}, 1},
		{"bad username", dto.RegisterAdministratorRequest{Username: "ops admin", Password: "long-enough"}, 1},
		{"blank", dto.RegisterAdministratorRequest{}, 2},
		{"long password", dto.RegisterAdministratorRequest{Username: "ops", Password: strings.Repeat("x", 73)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRegisterAdministratorRequest(&tt.req)
			if len(got.Errors) != tt.errors {
				t.Fatalf("errors = %+v, want %d", got.Errors, tt.errors)
			}
		})
	}
}

func TestValidateLoginRequest(t *testing.T) {
	if ValidateLoginRequest(&dto.LoginRequest{Username: "a", Password: "b"}).HasError() {
		t.Fatal("valid login rejected")
	}
	if !ValidateLoginRequest(&dto.LoginRequest{Username: "a"}).HasError() {
		t.Fatal("missing password accepted")
	}
}
