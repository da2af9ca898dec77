package entity

import (
	"errors"
	"strings"
)

type CheckinStatus string

const (
	StatusUnknown   CheckinStatus = "UNKNOWN"
	StatusCheckedIn CheckinStatus = "CHECKED_IN"
	StatusDeclined  CheckinStatus = "DECLINED"
)

var ErrInvalidStatus = errors.New("invalid check-in status")

// ParseStatus accepts any letter case and returns the canonical spelling.
func ParseStatus(raw string) (CheckinStatus, error) {
	switch CheckinStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusUnknown:
		return StatusUnknown, nil
	case StatusCheckedIn:
		return StatusCheckedIn, nil
	case StatusDeclined:
		return StatusDeclined, nil
	}
	return "", ErrInvalidStatus
}

// Checkin is one participant's attendance state for one event.
type Checkin struct {
	EventID int64         `db:"event_id"`
	Email   string        `db:"email"`
	Status  CheckinStatus `db:"status"`
}
