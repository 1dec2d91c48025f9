// Package service implements the event rule engine: validation and business
// invariants enforced between the HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelar-dev/eventhub/internal/model"
	"github.com/avelar-dev/eventhub/internal/repository"
)

// MaxEventsPerDay caps how many events one user may hold on a single
// calendar day.
const MaxEventsPerDay = 5

// Rule violations surfaced to handlers. Handlers map these to HTTP statuses
// with errors.Is; anything else is a store failure and passes through wrapped.
var (
	ErrInvalidDate       = errors.New("event date is invalid or not in the future")
	ErrMissingField      = errors.New("title, description and createdBy are required")
	ErrDuplicateTitle    = errors.New("user already has an event with this title")
	ErrQuotaExceeded     = fmt.Errorf("user can't create more than %d events per day", MaxEventsPerDay)
	ErrInvalidID         = errors.New("event id is invalid")
	ErrInvalidEvent      = errors.New("event doesn't exist")
	ErrMissingUsername   = errors.New("username is required")
	ErrAlreadyRegistered = errors.New("user already registered")
	ErrEventPassed       = errors.New("the event already passed")
)

// dateLayouts are the accepted textual date formats, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// EventService enforces the event lifecycle and registration rules before
// delegating to the store.
type EventService struct {
	store repository.EventStore
}

// NewEventService constructs an EventService with its store dependency.
func NewEventService(store repository.EventStore) *EventService {
	return &EventService{store: store}
}

// ListEvents returns all events, or the single event matching titleFilter
// when one is given. An unmatched filter yields an empty result, not an
// error.
func (s *EventService) ListEvents(ctx context.Context, titleFilter string) ([]model.Event, error) {
	if titleFilter == "" {
		return s.store.ListAll(ctx)
	}
	event, err := s.store.GetByTitle(ctx, titleFilter)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []model.Event{}, nil
		}
		return nil, fmt.Errorf("list events: %w", err)
	}
	return []model.Event{*event}, nil
}

// GetEvent returns a single event by ID. A malformed id is treated as
// not-found rather than an error: the read path is deliberately permissive,
// unlike UpdateEvent and RegisterUser which reject malformed ids outright.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if uuid.Validate(id) != nil {
		return nil, repository.ErrNotFound
	}
	return s.store.GetByID(ctx, id)
}

// CreateEvent validates the request, enforces the duplicate-title and
// per-day quota rules, and persists the event with an empty attendee set.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	// One "now" per operation keeps every check in this call consistent.
	now := time.Now()

	date, ok := parseEventDate(req.Date)
	if !ok || !date.After(now) {
		return nil, ErrInvalidDate
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.CreatedBy = strings.TrimSpace(req.CreatedBy)
	if req.Title == "" || req.Description == "" || req.CreatedBy == "" {
		return nil, ErrMissingField
	}

	existing, err := s.store.GetByTitle(ctx, req.Title)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check duplicate title: %w", err)
	}
	if existing != nil && existing.CreatedBy == req.CreatedBy {
		return nil, ErrDuplicateTitle
	}

	if err := s.checkDayQuota(ctx, req.CreatedBy, date); err != nil {
		return nil, err
	}

	event := model.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		CreatedBy:   req.CreatedBy,
		Attendees:   map[string]bool{},
	}
	created, err := s.store.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

// UpdateEvent applies a partial update. The target must exist; a malformed
// or unknown id fails with ErrInvalidID. A new date is re-validated and the
// owner's day quota recomputed against it, counting the updated record like
// any other. Updates without a date skip date validation entirely.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	now := time.Now()

	if uuid.Validate(id) != nil {
		return nil, ErrInvalidID
	}
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidID
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	fields := repository.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	}
	if req.Date != nil {
		date, ok := parseEventDate(*req.Date)
		if !ok || !date.After(now) {
			return nil, ErrInvalidDate
		}
		if err := s.checkDayQuota(ctx, current.CreatedBy, date); err != nil {
			return nil, err
		}
		fields.Date = &date
	}

	updated, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// RegisterUser adds username to the event's attendee set. Registration is
// rejected for unknown events, duplicate attendees, and events whose date
// has already passed.
func (s *EventService) RegisterUser(ctx context.Context, eventID, username string) (*model.Event, error) {
	now := time.Now()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrMissingUsername
	}
	if uuid.Validate(eventID) != nil {
		return nil, ErrInvalidEvent
	}

	event, err := s.store.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidEvent
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.IsRegistered(username) {
		return nil, ErrAlreadyRegistered
	}
	if event.HasPassed(now) {
		return nil, ErrEventPassed
	}

	attendees := event.CloneAttendees()
	attendees[username] = true

	updated, err := s.store.Update(ctx, eventID, repository.EventUpdate{Attendees: attendees})
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes an event and returns its prior state. Like GetEvent,
// a malformed id is treated as not-found.
func (s *EventService) DeleteEvent(ctx context.Context, id string) (*model.Event, error) {
	if uuid.Validate(id) != nil {
		return nil, repository.ErrNotFound
	}
	return s.store.Delete(ctx, id)
}

// checkDayQuota fails with ErrQuotaExceeded when createdBy already holds
// MaxEventsPerDay events on date's calendar day. The check-then-write
// sequence is not transactional: two concurrent creations can both pass
// before either persists. That weak consistency is an accepted property of
// the store contract.
func (s *EventService) checkDayQuota(ctx context.Context, createdBy string, date time.Time) error {
	dayStart, dayEnd := dayBounds(date)
	sameDay, err := s.store.GetByCreatorAndDate(ctx, createdBy, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("count events per day: %w", err)
	}
	if len(sameDay) >= MaxEventsPerDay {
		return ErrQuotaExceeded
	}
	return nil
}

// dayBounds returns the inclusive calendar-day window around t,
// 00:00:00.000 through 23:59:59.999 in t's location.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// parseEventDate parses the accepted textual date formats.
func parseEventDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if date, err := time.ParseInLocation(layout, text, time.Local); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}
