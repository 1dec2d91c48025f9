package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelar-dev/eventhub/internal/model"
)

const eventColumns = `id, title, description, date, created_by, attendees, created_at, updated_at`

// Postgres is the pgx-backed EventStore.
type Postgres struct {
	db *pgxpool.Pool
}

var _ EventStore = (*Postgres)(nil)

// NewPostgres constructs a Postgres store over the given pool.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// Create inserts a new event with a generated UUID and returns it.
func (r *Postgres) Create(ctx context.Context, event model.Event) (*model.Event, error) {
	now := time.Now().UTC()
	event.ID = uuid.New().String()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Attendees == nil {
		event.Attendees = map[string]bool{}
	}

	attendees, err := json.Marshal(event.Attendees)
	if err != nil {
		return nil, fmt.Errorf("encode attendees: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, date, created_by, attendees, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.Title, event.Description, event.Date, event.CreatedBy, attendees, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &event, nil
}

// ListAll returns all events ordered by date ascending.
func (r *Postgres) ListAll(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetByID returns a single event or ErrNotFound.
func (r *Postgres) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// GetByTitle returns the event with the given title or ErrNotFound.
func (r *Postgres) GetByTitle(ctx context.Context, title string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE title = $1`, title,
	)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event by title: %w", err)
	}
	return event, nil
}

// GetByCreatorAndDate returns the creator's events with a date inside the
// inclusive [dayStart, dayEnd] window.
func (r *Postgres) GetByCreatorAndDate(ctx context.Context, createdBy string, dayStart, dayEnd time.Time) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE created_by = $1 AND date BETWEEN $2 AND $3
		 ORDER BY date ASC`,
		createdBy, dayStart, dayEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by creator and date: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// Update merges the non-nil fields into the stored row and returns the result.
func (r *Postgres) Update(ctx context.Context, id string, fields EventUpdate) (*model.Event, error) {
	set := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.Description != nil {
		add("description", *fields.Description)
	}
	if fields.Date != nil {
		add("date", *fields.Date)
	}
	if fields.CreatedBy != nil {
		add("created_by", *fields.CreatedBy)
	}
	if fields.Attendees != nil {
		attendees, err := json.Marshal(fields.Attendees)
		if err != nil {
			return nil, fmt.Errorf("encode attendees: %w", err)
		}
		add("attendees", attendees)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE events SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), eventColumns,
	)

	event, err := scanEvent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete removes the row and returns its prior state, or ErrNotFound.
func (r *Postgres) Delete(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`DELETE FROM events WHERE id = $1 RETURNING `+eventColumns, id,
	)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return event, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	var attendees []byte
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.CreatedBy, &attendees, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attendees, &e.Attendees); err != nil {
		return nil, fmt.Errorf("decode attendees: %w", err)
	}
	return &e, nil
}

func scanEvents(rows pgx.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}
