package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go-coordinator/modules/auth/entity"
)

type MemoryAdministratorRepository struct {
	mu     sync.RWMutex
	admins map[string]entity.Administrator
}

func NewMemoryAdministratorRepository() *MemoryAdministratorRepository {
	return &MemoryAdministratorRepository{admins: make(map[string]entity.Administrator)}
}

func (r *MemoryAdministratorRepository) FindByUsername(_ context.Context, username string) (*entity.Administrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.admins[username]
	if !ok {
		return nil, nil
	}
	return &admin, nil
}

func (r *MemoryAdministratorRepository) Create(_ context.Context, admin *entity.Administrator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.admins[admin.Username]; ok {
		return ErrAdministratorExists
	}
	r.admins[admin.Username] = *admin
	return nil
}

func (r *MemoryAdministratorRepository) Upsert(_ context.Context, admin *entity.Administrator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[admin.Username] = *admin
	return nil
}

func (r *MemoryAdministratorRepository) List(context.Context) ([]entity.Administrator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Administrator, 0, len(r.admins))
	for _, admin := range r.admins {
		out = append(out, admin)
	}
	slices.SortFunc(out, func(a, b entity.Administrator) int { return strings.Compare(a.Username, b.Username) })
	return out, nil
}
