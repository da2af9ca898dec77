package dto

import "go-coordinator/modules/checkin/entity"

// CheckinUpdateMessage is both the body of a SEND to /update and the payload
// broadcast on /topic/checkins.
type CheckinUpdateMessage struct {
	EventID int64  `json:"eventId"`
	Email   string `json:"email"`
	Status  string `json:"status"`
}

type CheckinResponse struct {
	EventID int64  `json:"eventId"`
	Email   string `json:"email"`
	Status  string `json:"status"`
}

func ToCheckinResponses(items []entity.Checkin) []CheckinResponse {
	out := make([]CheckinResponse, 0, len(items))
	for _, item := range items {
		out = append(out, CheckinResponse{
			EventID: item.EventID,
			Email:   item.Email,
			Status:  string(item.Status),
		})
	}
	return out
}
