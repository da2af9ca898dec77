package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go-coordinator/modules/checkin/entity"
)

// MemoryRegistry keeps events in process. Each participant is a separate
// cell with its own lock, so updates for different participants never
// contend while updates for the same participant are serialised.
type MemoryRegistry struct {
	mu     sync.RWMutex
	events map[int64]*eventCells
}

type eventCells struct {
	mu    sync.RWMutex
	cells map[string]*cell
}

type cell struct {
	mu     sync.Mutex
	status entity.CheckinStatus
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{events: make(map[int64]*eventCells)}
}

func (r *MemoryRegistry) event(eventID int64) *eventCells {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.events[eventID]
}

func (r *MemoryRegistry) Get(_ context.Context, eventID int64) ([]entity.Checkin, error) {
	ev := r.event(eventID)
	if ev == nil {
		return nil, ErrEventNotFound
	}

	ev.mu.RLock()
	out := make([]entity.Checkin, 0, len(ev.cells))
	for email, c := range ev.cells {
		c.mu.Lock()
		out = append(out, entity.Checkin{EventID: eventID, Email: email, Status: c.status})
		c.mu.Unlock()
	}
	ev.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.Checkin) int { return strings.Compare(a.Email, b.Email) })
	return out, nil
}

func (r *MemoryRegistry) ApplyUpdate(_ context.Context, eventID int64, email string, status entity.CheckinStatus) (ApplyResult, error) {
	ev := r.event(eventID)
	if ev == nil {
		return RejectedUnknownEvent, nil
	}

	ev.mu.RLock()
	c := ev.cells[email]
	ev.mu.RUnlock()
	if c == nil {
		return RejectedUnknownParticipant, nil
	}

	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
	return Applied, nil
}

// CreateEvent registers an empty event. It fails with ErrEventExists if the
// id is taken.
func (r *MemoryRegistry) CreateEvent(eventID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[eventID]; ok {
		return ErrEventExists
	}
	r.events[eventID] = &eventCells{cells: make(map[string]*cell)}
	return nil
}

// AddParticipant registers email for eventID with status UNKNOWN. It reports
// false if the participant was already registered, leaving its status as is.
func (r *MemoryRegistry) AddParticipant(eventID int64, email string) (bool, error) {
	ev := r.event(eventID)
	if ev == nil {
		return false, ErrEventNotFound
	}

	ev.mu.Lock()
	defer ev.mu.Unlock()
	if _, ok := ev.cells[email]; ok {
		return false, nil
	}
	ev.cells[email] = &cell{status: entity.StatusUnknown}
	return true, nil
}

// DeleteEvent drops the event and its participant map together.
func (r *MemoryRegistry) DeleteEvent(eventID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, eventID)
}

func (r *MemoryRegistry) HasEvent(eventID int64) bool {
	return r.event(eventID) != nil
}
