// Package repository implements persistence for events. The EventStore
// contract is what the service layer programs against; Postgres is the
// production implementation and Memory backs tests and local development.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/avelar-dev/eventhub/internal/model"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("not found")

// EventUpdate carries a partial update for a stored event.
// Nil fields are left as they are; ID and CreatedAt are never touched.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	CreatedBy   *string
	Attendees   map[string]bool
}

// EventStore is the persistence contract consumed by the service layer.
// Implementations guarantee atomicity per individual call only; the service
// layer never relies on atomicity across calls.
type EventStore interface {
	// ListAll returns every stored event.
	ListAll(ctx context.Context) ([]model.Event, error)

	// GetByID returns the event with the given id or ErrNotFound. Callers
	// are expected to have validated that id is a well-formed identifier.
	GetByID(ctx context.Context, id string) (*model.Event, error)

	// GetByTitle returns the event with the given title or ErrNotFound.
	GetByTitle(ctx context.Context, title string) (*model.Event, error)

	// GetByCreatorAndDate returns every event owned by createdBy whose date
	// falls within [dayStart, dayEnd], bounds inclusive.
	GetByCreatorAndDate(ctx context.Context, createdBy string, dayStart, dayEnd time.Time) ([]model.Event, error)

	// Create persists the event, assigning its identity and timestamps,
	// and returns the stored record.
	Create(ctx context.Context, event model.Event) (*model.Event, error)

	// Update merges the given fields into the stored record and returns the
	// merged result, or ErrNotFound if no record exists for id.
	Update(ctx context.Context, id string, fields EventUpdate) (*model.Event, error)

	// Delete removes the record and returns its prior state, or ErrNotFound
	// if none existed.
	Delete(ctx context.Context, id string) (*model.Event, error)
}
