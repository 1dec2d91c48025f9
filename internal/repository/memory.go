package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avelar-dev/eventhub/internal/model"
)

// Memory is an in-memory EventStore with the same semantics as Postgres.
// It backs the test suites and local development without a database.
type Memory struct {
	mu     sync.RWMutex
	events map[string]model.Event
}

var _ EventStore = (*Memory)(nil)

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{events: make(map[string]model.Event)}
}

func (r *Memory) Create(_ context.Context, event model.Event) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	event.ID = uuid.New().String()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Attendees == nil {
		event.Attendees = map[string]bool{}
	}

	r.events[event.ID] = cloneEvent(event)
	event = cloneEvent(event)
	return &event, nil
}

func (r *Memory) ListAll(_ context.Context) ([]model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]model.Event, 0, len(r.events))
	for _, event := range r.events {
		events = append(events, cloneEvent(event))
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

func (r *Memory) GetByID(_ context.Context, id string) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	event = cloneEvent(event)
	return &event, nil
}

func (r *Memory) GetByTitle(_ context.Context, title string) (*model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, event := range r.events {
		if event.Title == title {
			event = cloneEvent(event)
			return &event, nil
		}
	}
	return nil, ErrNotFound
}

func (r *Memory) GetByCreatorAndDate(_ context.Context, createdBy string, dayStart, dayEnd time.Time) ([]model.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []model.Event
	for _, event := range r.events {
		if event.CreatedBy != createdBy {
			continue
		}
		// Bounds are inclusive on both ends.
		if event.Date.Before(dayStart) || event.Date.After(dayEnd) {
			continue
		}
		events = append(events, cloneEvent(event))
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
	return events, nil
}

func (r *Memory) Update(_ context.Context, id string, fields EventUpdate) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}

	if fields.Title != nil {
		event.Title = *fields.Title
	}
	if fields.Description != nil {
		event.Description = *fields.Description
	}
	if fields.Date != nil {
		event.Date = *fields.Date
	}
	if fields.CreatedBy != nil {
		event.CreatedBy = *fields.CreatedBy
	}
	if fields.Attendees != nil {
		event.Attendees = fields.Attendees
	}
	event.UpdatedAt = time.Now().UTC()

	r.events[id] = cloneEvent(event)
	event = cloneEvent(event)
	return &event, nil
}

func (r *Memory) Delete(_ context.Context, id string) (*model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.events, id)
	event = cloneEvent(event)
	return &event, nil
}

// cloneEvent copies the event so callers never share the stored attendee map.
func cloneEvent(event model.Event) model.Event {
	event.Attendees = (&event).CloneAttendees()
	return event
}
