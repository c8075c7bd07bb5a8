package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theatreops/internal/domain"
	"theatreops/internal/query"
)

type fakeAsker struct {
	resp *query.Response
	err  error
}

func (f *fakeAsker) Answer(context.Context, string) (*query.Response, error) {
	return f.resp, f.err
}

type fakeNotifications struct {
	items []domain.Notification
	err   error
}

func (f *fakeNotifications) ListRecent(_ context.Context, limit int) ([]domain.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.items) {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type fakeEvents struct {
	items []domain.DomainEvent
}

func (f *fakeEvents) ListRecent(context.Context, int) ([]domain.DomainEvent, error) {
	return f.items, nil
}

type fakeMonitor struct {
	running bool
}

func (f *fakeMonitor) Running() bool { return f.running }

func testRouter(asker Asker, notifications NotificationReader, events EventReader, monitor MonitorStatus) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHandler(asker, notifications, events, monitor, logger))
}

func TestHandleAsk(t *testing.T) {
	asker := &fakeAsker{resp: &query.Response{
		Topic:      "breaches",
		Answer:     "Tracking 10 procedures: 3 breached, 2 at risk, 5 on track.",
		Confidence: 100,
	}}
	router := testRouter(asker, &fakeNotifications{}, &fakeEvents{}, &fakeMonitor{running: true})

	req := httptest.NewRequest(http.MethodPost, "/assistant/ask", strings.NewReader(`{"question":"how many breaches?"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp query.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "breaches", resp.Topic)
	assert.Equal(t, 100, resp.Confidence)
}

func TestHandleAsk_BadRequests(t *testing.T) {
	router := testRouter(&fakeAsker{}, &fakeNotifications{}, &fakeEvents{}, &fakeMonitor{running: true})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"question":`},
		{"empty question", `{"question":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/assistant/ask", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleAsk_QueryFailure(t *testing.T) {
	router := testRouter(&fakeAsker{err: errors.New("db down")}, &fakeNotifications{}, &fakeEvents{}, &fakeMonitor{running: true})

	req := httptest.NewRequest(http.MethodPost, "/assistant/ask", strings.NewReader(`{"question":"how many breaches?"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleRecentNotifications(t *testing.T) {
	notifications := &fakeNotifications{items: []domain.Notification{
		{ID: uuid.New(), Recipient: "cons-1", Severity: domain.SeverityUrgent, Title: "Target breach", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), Recipient: domain.BroadcastManagers, Severity: domain.SeverityNormal, Title: "Stock low", CreatedAt: time.Now().UTC()},
	}}
	router := testRouter(&fakeAsker{}, notifications, &fakeEvents{}, &fakeMonitor{running: true})

	req := httptest.NewRequest(http.MethodGet, "/notifications/recent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Notifications, 2)
}

func TestHandleRecentNotifications_LimitApplied(t *testing.T) {
	items := make([]domain.Notification, 5)
	router := testRouter(&fakeAsker{}, &fakeNotifications{items: items}, &fakeEvents{}, &fakeMonitor{running: true})

	req := httptest.NewRequest(http.MethodGet, "/notifications/recent?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Notifications, 2)
}

func TestHandleRecentEvents(t *testing.T) {
	events := &fakeEvents{items: []domain.DomainEvent{
		{ID: uuid.New(), Kind: domain.EventProcedureBreached, EntityType: domain.EntityProcedure, EntityID: "proc-1"},
	}}
	router := testRouter(&fakeAsker{}, &fakeNotifications{}, events, &fakeMonitor{running: true})

	req := httptest.NewRequest(http.MethodGet, "/events/recent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "procedure_breached")
}

func TestHandleHealth(t *testing.T) {
	t.Run("running monitor is healthy", func(t *testing.T) {
		router := testRouter(&fakeAsker{}, &fakeNotifications{}, &fakeEvents{}, &fakeMonitor{running: true})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("stopped monitor reports unavailable", func(t *testing.T) {
		router := testRouter(&fakeAsker{}, &fakeNotifications{}, &fakeEvents{}, &fakeMonitor{running: false})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRouter_MethodEnforcement(t *testing.T) {
	router := testRouter(&fakeAsker{}, &fakeNotifications{}, &fakeEvents{}, &fakeMonitor{running: true})

	req := httptest.NewRequest(http.MethodGet, "/assistant/ask", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
