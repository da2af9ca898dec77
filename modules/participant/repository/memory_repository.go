package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"go-coordinator/modules/participant/entity"
)

type MemoryParticipantRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]entity.Participant
	byEmail map[string]int64
}

func NewMemoryParticipantRepository() *MemoryParticipantRepository {
	return &MemoryParticipantRepository{
		byID:    make(map[int64]entity.Participant),
		byEmail: make(map[string]int64),
	}
}

func (r *MemoryParticipantRepository) Create(_ context.Context, p *entity.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[p.Email]; ok {
		return ErrParticipantExists
	}
	r.nextID++
	p.ID = r.nextID
	r.byID[p.ID] = *p
	r.byEmail[p.Email] = p.ID
	return nil
}

func (r *MemoryParticipantRepository) List(context.Context) ([]entity.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Participant, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b entity.Participant) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *MemoryParticipantRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.byID[id]; ok {
		delete(r.byEmail, p.Email)
		delete(r.byID, id)
	}
	return nil
}

func (r *MemoryParticipantRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}
