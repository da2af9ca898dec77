package repository

import (
	"context"
	"errors"

	"go-coordinator/modules/auth/entity"
)

var ErrAdministratorExists = errors.New("administrator already exists")

// AdministratorRepositoryInterface stores the administrators allowed to log
// in. FindByUsername returns nil, nil when there is no such administrator.
type AdministratorRepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*entity.Administrator, error)
	Create(ctx context.Context, admin *entity.Administrator) error
	// Upsert inserts or replaces an administrator; configuration seeding
	// uses it so the configured hash always wins.
	Upsert(ctx context.Context, admin *entity.Administrator) error
	List(ctx context.Context) ([]entity.Administrator, error)
}
