package repository

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	checkinRepository "go-coordinator/modules/checkin/repository"
	"go-coordinator/modules/event/entity"
)

// MemoryEventRepository keeps event metadata itself and stores participants
// in the check-in registry, so registrations are visible to check-in updates
// immediately.
type MemoryEventRepository struct {
	mu       sync.RWMutex
	nextID   int64
	events   map[int64]entity.Event
	registry *checkinRepository.MemoryRegistry
}

func NewMemoryEventRepository(registry *checkinRepository.MemoryRegistry) *MemoryEventRepository {
	return &MemoryEventRepository{
		events:   make(map[int64]entity.Event),
		registry: registry,
	}
}

func (r *MemoryEventRepository) Search(ctx context.Context, keywords []string) ([]entity.EventSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []entity.EventSummary{}
	for _, ev := range r.events {
		if !matchesAll(ev.Title, keywords) {
			continue
		}
		items, err := r.registry.Get(ctx, ev.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, entity.EventSummary{ID: ev.ID, Title: ev.Title, CreatedAt: ev.CreatedAt, Participants: len(items)})
	}

	slices.SortFunc(out, func(a, b entity.EventSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func matchesAll(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

func (r *MemoryEventRepository) GetByID(ctx context.Context, id int64) (*entity.EventDetail, error) {
	r.mu.RLock()
	ev, ok := r.events[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrEventNotFound
	}

	items, err := r.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &entity.EventDetail{Event: ev, Participants: make([]string, 0, len(items))}
	for _, item := range items {
		detail.Participants = append(detail.Participants, item.Email)
	}
	return detail, nil
}

func (r *MemoryEventRepository) Create(_ context.Context, title string, now time.Time) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	ev := entity.Event{ID: r.nextID, Title: title, CreatedAt: now, UpdatedAt: now}
	if err := r.registry.CreateEvent(ev.ID); err != nil {
		return nil, err
	}
	r.events[ev.ID] = ev
	return &ev, nil
}

func (r *MemoryEventRepository) UpdateTitle(_ context.Context, id int64, title string, now time.Time) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	ev.Title = title
	ev.UpdatedAt = now
	r.events[id] = ev
	return &ev, nil
}

func (r *MemoryEventRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, id)
	r.registry.DeleteEvent(id)
	return nil
}

func (r *MemoryEventRepository) AddParticipant(_ context.Context, id int64, email string) (bool, error) {
	added, err := r.registry.AddParticipant(id, email)
	if errors.Is(err, checkinRepository.ErrEventNotFound) {
		return false, ErrEventNotFound
	}
	return added, err
}
