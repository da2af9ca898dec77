package dto

import (
	"time"

	"go-coordinator/modules/event/entity"
)

type EventRequest struct {
	Title string `json:"title"`
}

type RegisterRequest struct {
	Email string `json:"email"`
}

type EventSummaryResponse struct {
	ID           int64     `json:"id"`
	Created      time.Time `json:"created"`
	Title        string    `json:"title"`
	Participants int       `json:"participants"`
}

type EventDetailResponse struct {
	ID           int64     `json:"id"`
	Created      time.Time `json:"created"`
	Title        string    `json:"title"`
	Participants []string  `json:"participants"`
}

type RegisterResponse struct {
	EventID    int64  `json:"eventId"`
	Email      string `json:"email"`
	Registered bool   `json:"registered"`
}

func ToEventSummaryResponses(items []entity.EventSummary) []EventSummaryResponse {
	out := make([]EventSummaryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, EventSummaryResponse{
			ID:           item.ID,
			Created:      item.CreatedAt,
			Title:        item.Title,
			Participants: item.Participants,
		})
	}
	return out
}

func ToEventDetailResponse(detail *entity.EventDetail) *EventDetailResponse {
	participants := detail.Participants
	if participants == nil {
		participants = []string{}
	}
	return &EventDetailResponse{
		ID:           detail.ID,
		Created:      detail.CreatedAt,
		Title:        detail.Title,
		Participants: participants,
	}
}
