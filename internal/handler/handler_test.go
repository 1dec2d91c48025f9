package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avelar-dev/eventhub/internal/model"
	"github.com/avelar-dev/eventhub/internal/repository"
	"github.com/avelar-dev/eventhub/internal/service"
)

func newTestServer(t *testing.T) (*httptest.Server, *repository.Memory) {
	t.Helper()
	store := repository.NewMemory()
	svc := service.NewEventService(store)
	router := NewRouter(NewEventHandler(svc), zerolog.Nop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func createPayload(title string) model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:       title,
		Description: "a sample event description",
		Date:        time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		CreatedBy:   "user123",
	}
}

func createEvent(t *testing.T, srv *httptest.Server, title string) model.Event {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/events", createPayload(title))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var event model.Event
	decodeBody(t, resp, &event)
	return event
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "ok", body["status"])
}

func TestCreateEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	event := createEvent(t, srv, "Standup")
	require.NotEmpty(t, event.ID)
	require.Equal(t, "Standup", event.Title)
	require.NotNil(t, event.Attendees)
	require.Empty(t, event.Attendees)
}

func TestCreateEventBadRequests(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("malformed body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/events", "application/json", bytes.NewBufferString("{not json"))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/events", "application/json",
			bytes.NewBufferString(`{"title":"X","descr1ption":"d"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing title", func(t *testing.T) {
		payload := createPayload("")
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/events", payload)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("past date", func(t *testing.T) {
		payload := createPayload("Past")
		payload.Date = time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/events", payload)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateEventDuplicateTitleConflict(t *testing.T) {
	srv, _ := newTestServer(t)

	createEvent(t, srv, "Launch")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/events", createPayload("Launch"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateEventQuotaBadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 1; i <= service.MaxEventsPerDay; i++ {
		createEvent(t, srv, fmt.Sprintf("Standup %d", i))
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/events", createPayload("Standup 6"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body model.ErrorResponse
	decodeBody(t, resp, &body)
	require.Contains(t, body.Error, "per day")
}

func TestGetEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createEvent(t, srv, "Fetchable")

	resp, err := http.Get(srv.URL + "/api/events/" + created.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event model.Event
	decodeBody(t, resp, &event)
	require.Equal(t, created.ID, event.ID)
	require.Equal(t, "Fetchable", event.Title)
}

func TestGetEventNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, id := range []string{"not-a-uuid", "7d9f0000-0000-4000-8000-000000000000"} {
		resp, err := http.Get(srv.URL + "/api/events/" + id)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode, "id %q", id)
	}
}

func TestListEvents(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/events")
	require.NoError(t, err)
	var events []model.Event
	decodeBody(t, resp, &events)
	resp.Body.Close()
	require.NotNil(t, events)
	require.Empty(t, events)

	createEvent(t, srv, "First")
	createEvent(t, srv, "Second")

	resp, err = http.Get(srv.URL + "/api/events")
	require.NoError(t, err)
	decodeBody(t, resp, &events)
	resp.Body.Close()
	require.Len(t, events, 2)

	resp, err = http.Get(srv.URL + "/api/events?title=Second")
	require.NoError(t, err)
	decodeBody(t, resp, &events)
	resp.Body.Close()
	require.Len(t, events, 1)
	require.Equal(t, "Second", events[0].Title)
}

func TestUpdateEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createEvent(t, srv, "Original")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/events/"+created.ID,
		map[string]string{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event model.Event
	decodeBody(t, resp, &event)
	require.Equal(t, "Renamed", event.Title)
	require.Equal(t, created.Description, event.Description)
}

func TestUpdateEventFailures(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createEvent(t, srv, "Stuck")

	t.Run("malformed id", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, srv.URL+"/api/events/not-a-uuid",
			map[string]string{"title": "Renamed"})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("past date", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, srv.URL+"/api/events/"+created.ID,
			map[string]string{"date": time.Now().Add(-time.Hour).Format(time.RFC3339)})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRegisterUser(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createEvent(t, srv, "Meetup")
	url := srv.URL + "/api/events/" + created.ID + "/register"

	resp := doJSON(t, http.MethodPut, url, model.RegisterRequest{Username: "newUser"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event model.Event
	decodeBody(t, resp, &event)
	require.True(t, event.Attendees["newUser"])

	resp = doJSON(t, http.MethodPut, url, model.RegisterRequest{Username: "newUser"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, url, model.RegisterRequest{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterUserEventPassed(t *testing.T) {
	srv, store := newTestServer(t)

	past, err := store.Create(context.Background(), model.Event{
		Title:       "Past Event",
		Description: "already happened",
		Date:        time.Now().Add(-24 * time.Hour),
		CreatedBy:   "user123",
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/events/"+past.ID+"/register",
		model.RegisterRequest{Username: "lateUser"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteEvent(t *testing.T) {
	srv, _ := newTestServer(t)

	created := createEvent(t, srv, "Doomed")

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/events/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var event model.Event
	decodeBody(t, resp, &event)
	require.Equal(t, created.ID, event.ID)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/events/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodOptions, srv.URL+"/api/events", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Drive one instrumented request so the counters exist before scraping.
	warmup, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	warmup.Body.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "eventhub_http_requests_total")
}
