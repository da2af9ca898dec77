package repository

import (
	"context"
	"time"

	"go-coordinator/modules/checkin/repository"
	"go-coordinator/modules/event/entity"
)

// ErrEventNotFound is shared with the check-in registry so both stores speak
// the same error.
var ErrEventNotFound = repository.ErrEventNotFound

type EventRepositoryInterface interface {
	// Search returns events whose title contains every keyword, newest first.
	Search(ctx context.Context, keywords []string) ([]entity.EventSummary, error)
	GetByID(ctx context.Context, id int64) (*entity.EventDetail, error)
	Create(ctx context.Context, title string, now time.Time) (*entity.Event, error)
	UpdateTitle(ctx context.Context, id int64, title string, now time.Time) (*entity.Event, error)
	// Delete removes the event and its participants. Deleting a missing
	// event is not an error.
	Delete(ctx context.Context, id int64) error
	// AddParticipant registers email with status UNKNOWN. It reports false if
	// the email was already registered.
	AddParticipant(ctx context.Context, id int64, email string) (bool, error)
}
