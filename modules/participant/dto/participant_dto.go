package dto

import "go-coordinator/modules/participant/entity"

type ParticipantRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	Notes       string `json:"notes"`
}

type ParticipantResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type VerifyRequest struct {
	Email string `json:"email"`
}

type VerifyResponse struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

func ToParticipantResponse(p *entity.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Address:     p.Address,
		PhoneNumber: p.Phone,
		Notes:       p.Notes,
	}
}

func ToParticipantResponses(items []entity.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(items))
	for i := range items {
		out = append(out, ToParticipantResponse(&items[i]))
	}
	return out
}
