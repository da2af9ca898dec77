package repository

import (
	"context"
	"errors"

	"go-coordinator/modules/checkin/entity"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventExists   = errors.New("event already exists")
)

// ApplyResult is the outcome of an update that reached the store. Rejections
// are not errors; the error return is kept for storage failures.
type ApplyResult int

const (
	Applied ApplyResult = iota
	RejectedUnknownEvent
	RejectedUnknownParticipant
)

func (r ApplyResult) String() string {
	switch r {
	case Applied:
		return "applied"
	case RejectedUnknownEvent:
		return "unknown_event"
	case RejectedUnknownParticipant:
		return "unknown_participant"
	}
	return "invalid"
}

// CheckinRegistry holds the status of every registered participant of every
// event. Updates are last-write-wins per (event, email); a rejected update
// leaves the registry unchanged.
type CheckinRegistry interface {
	Get(ctx context.Context, eventID int64) ([]entity.Checkin, error)
	ApplyUpdate(ctx context.Context, eventID int64, email string, status entity.CheckinStatus) (ApplyResult, error)
}
