// Package model defines the core domain types for the event scheduling system.
package model

import "time"

// Event represents a scheduled event owned by a creating user.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedBy   string          `json:"createdBy"`
	Attendees   map[string]bool `json:"attendees"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsRegistered reports whether username already appears in the attendee set.
func (e *Event) IsRegistered(username string) bool {
	return e.Attendees[username]
}

// HasPassed reports whether the event date is no longer in the future
// relative to now.
func (e *Event) HasPassed(now time.Time) bool {
	return !e.Date.After(now)
}

// CloneAttendees returns a copy of the attendee set safe to mutate.
// A nil set clones to an empty, non-nil map.
func (e *Event) CloneAttendees() map[string]bool {
	attendees := make(map[string]bool, len(e.Attendees)+1)
	for username, registered := range e.Attendees {
		attendees[username] = registered
	}
	return attendees
}

// CreateEventRequest is the payload for creating a new event.
// The date is raw text; the service layer parses and validates it.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Date        string `json:"date" validate:"required"`
	CreatedBy   string `json:"createdBy" validate:"required"`
}

// UpdateEventRequest carries a partial update. Nil fields are left untouched;
// the event ID is never updatable.
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty" validate:"omitempty,min=1"`
	Date        *string `json:"date,omitempty" validate:"omitempty,min=1"`
	CreatedBy   *string `json:"createdBy,omitempty" validate:"omitempty,min=1"`
}

// IsEmpty reports whether the update carries no fields at all.
func (r UpdateEventRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Date == nil && r.CreatedBy == nil
}

// RegisterRequest is the payload for registering a user to an event.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
