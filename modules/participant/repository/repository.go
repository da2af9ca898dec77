package repository

import (
	"context"
	"errors"

	"go-coordinator/modules/participant/entity"
)

var ErrParticipantExists = errors.New("participant already registered")

type ParticipantRepositoryInterface interface {
	Create(ctx context.Context, p *entity.Participant) error
	List(ctx context.Context) ([]entity.Participant, error)
	Delete(ctx context.Context, id int64) error
	// ExistsByEmail matches the address exactly.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
