package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/forum-be/internal/http/respond"
	"github.com/hongminglow/forum-be/internal/storage"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler returns uptime and database reachability.
type HealthHandler struct {
	startedAt time.Time
	db        storage.Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, db storage.Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status, database := http.StatusOK, "ok"
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		status, database = http.StatusServiceUnavailable, "unreachable"
	}

	respond.JSON(w, status, http.StatusText(status), map[string]string{
		"database": database,
		"uptime":   time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
