// Package httpapi is the thin HTTP layer over the alerting engine. Handlers
// decode, delegate, and encode; business logic stays in the engine packages.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"theatreops/internal/domain"
	"theatreops/internal/query"
)

const defaultRecentLimit = 50

// Asker answers free-text console questions.
type Asker interface {
	Answer(ctx context.Context, question string) (*query.Response, error)
}

// NotificationReader serves the console's notification feed.
type NotificationReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Notification, error)
}

// EventReader serves the audit trail of classified events.
type EventReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DomainEvent, error)
}

// MonitorStatus reports whether the change monitor is running.
type MonitorStatus interface {
	Running() bool
}

// Handler wires console endpoints to the engine.
type Handler struct {
	logger        *slog.Logger
	asker         Asker
	notifications NotificationReader
	events        EventReader
	monitor       MonitorStatus
}

func NewHandler(asker Asker, notifications NotificationReader, events EventReader, monitor MonitorStatus, logger *slog.Logger) *Handler {
	return &Handler{
		logger:        logger,
		asker:         asker,
		notifications: notifications,
		events:        events,
		monitor:       monitor,
	}
}

// NewRouter mounts all public endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Post("/assistant/ask", h.handleAsk)
	r.Get("/notifications/recent", h.handleRecentNotifications)
	r.Get("/events/recent", h.handleRecentEvents)
	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp, err := h.asker.Answer(ctx, req.Question)
	if err != nil {
		h.logger.ErrorContext(ctx, "assistant query failed",
			"request_id", chimw.GetReqID(ctx),
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRecentNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notifications, err := h.notifications.ListRecent(ctx, limitFrom(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "listing notifications failed",
			"request_id", chimw.GetReqID(ctx),
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "listing notifications failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notifications})
}

func (h *Handler) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.events.ListRecent(ctx, limitFrom(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "listing events failed",
			"request_id", chimw.GetReqID(ctx),
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "listing events failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if h.monitor != nil && !h.monitor.Running() {
		status = "monitor stopped"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status})
}

func limitFrom(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return defaultRecentLimit
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
