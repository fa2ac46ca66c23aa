package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwpokerclub/clubhouse/models"
	"github.com/uwpokerclub/clubhouse/services"
)

// stubEventService returns canned results so the tests exercise only the
// HTTP layer: routing, decoding and the error-to-status mapping.
type stubEventService struct {
	event      *models.Event
	events     []*models.Event
	err        string
	endErr     error
	restartErr error
	endedID    int
}

func (s *stubEventService) CreateEvent(ctx context.Context, input services.CreateEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, services.ErrEventNameRequired
	}
	return s.event, nil
}

func (s *stubEventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, services.ErrEventNotFound
	}
	return s.event, nil
}

func (s *stubEventService) ListEventsBySemester(ctx context.Context, semesterID uuid.UUID) ([]*models.Event, error) {
	return s.events, nil
}

func (s *stubEventService) UpdateEvent(ctx context.Context, id int, input services.UpdateEventInput) (*models.Event, error) {
	if s.event == nil || s.event.ID != id {
		return nil, services.ErrEventNotFound
	}
	if s.event.State == models.EventStateEnded {
		return nil, services.ErrEventEnded
	}
	return s.event, nil
}

func (s *stubEventService) EndEvent(ctx context.Context, id int) error {
	if s.endErr != nil {
		return s.endErr
	}
	s.endedID = id
	return nil
}

func (s *stubEventService) RestartEvent(ctx context.Context, id int) error {
	return s.restartErr
}

func newEventRouter(svc services.EventService) *chi.Mux {
	h := NewEventHandler(svc)
	router := chi.NewRouter()
	router.Post("/events", h.CreateHandler)
	router.Get("/events/{eventID}", h.GetByIDHandler)
	router.Patch("/events/{eventID}", h.UpdateHandler)
	router.Post("/events/{eventID}/end", h.EndHandler)
	router.Post("/events/{eventID}/restart", h.RestartHandler)
	return router
}

func TestEndHandler_Success(t *testing.T) {
	svc := &stubEventService{}
	router := newEventRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/events/7/end", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, svc.endedID)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "event ended", body["message"])
}

func TestEndHandler_AlreadyEndedIsForbidden(t *testing.T) {
	router := newEventRouter(&stubEventService{endErr: services.ErrEventAlreadyEnded})

	req := httptest.NewRequest(http.MethodPost, "/events/7/end", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEndHandler_UnresolvedEntriesIsForbidden(t *testing.T) {
	router := newEventRouter(&stubEventService{endErr: services.ErrEntriesUnresolved})

	req := httptest.NewRequest(http.MethodPost, "/events/7/end", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "signed out")
}

func TestEndHandler_UnknownEventIsNotFound(t *testing.T) {
	router := newEventRouter(&stubEventService{endErr: services.ErrEventNotFound})

	req := httptest.NewRequest(http.MethodPost, "/events/404/end", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndHandler_UnexpectedErrorIsServerError(t *testing.T) {
	router := newEventRouter(&stubEventService{endErr: errors.New("connection reset")})

	req := httptest.NewRequest(http.MethodPost, "/events/7/end", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEndHandler_NonNumericIDIsBadRequest(t *testing.T) {
	router := newEventRouter(&stubEventService{})

	req := httptest.NewRequest(http.MethodPost, "/events/seven/end", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRestartHandler_Success(t *testing.T) {
	router := newEventRouter(&stubEventService{})

	req := httptest.NewRequest(http.MethodPost, "/events/7/restart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestRestartHandler_NotEndedIsForbidden(t *testing.T) {
	router := newEventRouter(&stubEventService{restartErr: services.ErrEventNotEnded})

	req := httptest.NewRequest(http.MethodPost, "/events/7/restart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateHandler_EndedEventIsForbidden(t *testing.T) {
	router := newEventRouter(&stubEventService{
		event: &models.Event{ID: 7, State: models.EventStateEnded},
	})

	req := httptest.NewRequest(http.MethodPatch, "/events/7", strings.NewReader(`{"name":"Renamed"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateHandler_MissingNameIsBadRequest(t *testing.T) {
	router := newEventRouter(&stubEventService{})

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"format":"NLHE"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHandler_UnknownFieldIsBadRequest(t *testing.T) {
	router := newEventRouter(&stubEventService{})

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"name":"x","bogus":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetByIDHandler_ReturnsEventEnvelope(t *testing.T) {
	router := newEventRouter(&stubEventService{
		event: &models.Event{ID: 7, Name: "Weekly", State: models.EventStateActive},
	})

	req := httptest.NewRequest(http.MethodGet, "/events/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Event models.Event `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Weekly", body.Event.Name)
	assert.Equal(t, models.EventStateActive, body.Event.State)
}
