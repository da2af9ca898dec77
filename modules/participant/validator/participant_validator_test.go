package validator

import (
	"strings"
	"testing"

	"go-coordinator/modules/participant/dto"
)

func TestValidateParticipantRequest(t *testing.T) {
	valid := dto.ParticipantRequest{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	tests := []struct {
		name   string
		mutate func(*dto.ParticipantRequest)
		fields []string
	}{
		{"valid", func(*dto.ParticipantRequest) {}, nil},
		{"blank first name", func(r *dto.ParticipantRequest) { r.FirstName = "  " }, []string{"firstName"}},
		{"blank last name", func(r *dto.ParticipantRequest) { r.LastName = "" }, []string{"lastName"}},
		{"bad email", func(r *dto.ParticipantRequest) { r.Email = "ada@example" }, []string{"email"}},
		{"long phone", func(r *dto.ParticipantRequest) { r.PhoneNumber = strings.Repeat("1", 65) }, []string{"phoneNumber"}},
		{"everything wrong", func(r *dto.ParticipantRequest) { *r = dto.ParticipantRequest{} }, []string{"firstName", "lastName", "email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			result := ValidateParticipantRequest(&req)

			var got []string
			for _, e := range result.Errors {
				got = append(got, e.Field)
			}
			if strings.Join(got, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("fields = %v, want %v", got, tt.fields)
			}
		})
	}
}
