package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/avelar-dev/eventhub/internal/model"
)

func sampleEvent(title string) model.Event {
	return model.Event{
		Title:       title,
		Description: "a sample event description",
		Date:        time.Date(2027, 3, 15, 18, 0, 0, 0, time.UTC),
		CreatedBy:   "user123",
	}
}

func TestMemoryCreate(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	created, err := store.Create(ctx, sampleEvent("Sample Event"))

	require.NoError(t, err)
	require.NoError(t, uuid.Validate(created.ID))
	require.Equal(t, "Sample Event", created.Title)
	require.NotNil(t, created.Attendees)
	require.False(t, created.CreatedAt.IsZero())
	require.False(t, created.UpdatedAt.IsZero())
}

func TestMemoryGetByID(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	created, err := store.Create(ctx, sampleEvent("Event by ID"))
	require.NoError(t, err)

	found, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Event by ID", found.Title)

	_, err = store.GetByID(ctx, uuid.New().String())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetByTitle(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_, err := store.Create(ctx, sampleEvent("Unique Event Title"))
	require.NoError(t, err)

	found, err := store.GetByTitle(ctx, "Unique Event Title")
	require.NoError(t, err)
	require.Equal(t, "Unique Event Title", found.Title)

	_, err = store.GetByTitle(ctx, "No Such Event")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListAll(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	events, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, events)

	later := sampleEvent("Later")
	later.Date = later.Date.Add(48 * time.Hour)
	_, err = store.Create(ctx, later)
	require.NoError(t, err)
	_, err = store.Create(ctx, sampleEvent("Sooner"))
	require.NoError(t, err)

	events, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "Sooner", events[0].Title)
	require.Equal(t, "Later", events[1].Title)
}

func TestMemoryGetByCreatorAndDate(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	dayStart := time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Millisecond)

	inWindow := []time.Time{
		dayStart,                     // inclusive lower bound
		dayEnd,                       // inclusive upper bound
		dayStart.Add(12 * time.Hour), // midday
	}
	for i, date := range inWindow {
		event := sampleEvent(fmt.Sprintf("In Window %d", i))
		event.Date = date
		_, err := store.Create(ctx, event)
		require.NoError(t, err)
	}

	dayBefore := sampleEvent("Day Before")
	dayBefore.Date = dayStart.Add(-time.Millisecond)
	_, err := store.Create(ctx, dayBefore)
	require.NoError(t, err)

	dayAfter := sampleEvent("Day After")
	dayAfter.Date = dayEnd.Add(time.Millisecond)
	_, err = store.Create(ctx, dayAfter)
	require.NoError(t, err)

	otherUser := sampleEvent("Other User")
	otherUser.Date = dayStart.Add(time.Hour)
	otherUser.CreatedBy = "user456"
	_, err = store.Create(ctx, otherUser)
	require.NoError(t, err)

	events, err := store.GetByCreatorAndDate(ctx, "user123", dayStart, dayEnd)
	require.NoError(t, err)
	require.Len(t, events, len(inWindow))
	for _, event := range events {
		require.Equal(t, "user123", event.CreatedBy)
	}
}

func TestMemoryUpdate(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	created, err := store.Create(ctx, sampleEvent("Event to Update"))
	require.NoError(t, err)

	title := "Updated Event Title"
	description := "updated description"
	updated, err := store.Update(ctx, created.ID, EventUpdate{
		Title:       &title,
		Description: &description,
	})

	require.NoError(t, err)
	require.Equal(t, "Updated Event Title", updated.Title)
	require.Equal(t, "updated description", updated.Description)
	// Untouched fields survive the merge.
	require.True(t, created.Date.Equal(updated.Date))
	require.Equal(t, created.CreatedBy, updated.CreatedBy)
	require.Equal(t, created.ID, updated.ID)

	_, err = store.Update(ctx, uuid.New().String(), EventUpdate{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpdateAttendees(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	created, err := store.Create(ctx, sampleEvent("Meetup"))
	require.NoError(t, err)

	updated, err := store.Update(ctx, created.ID, EventUpdate{
		Attendees: map[string]bool{"newUser": true},
	})
	require.NoError(t, err)
	require.True(t, updated.IsRegistered("newUser"))

	// The map returned to the caller must not alias store state.
	updated.Attendees["intruder"] = true
	fetched, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, fetched.IsRegistered("intruder"))
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	created, err := store.Create(ctx, sampleEvent("Event to Delete"))
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Event to Delete", deleted.Title)

	_, err = store.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Delete(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
