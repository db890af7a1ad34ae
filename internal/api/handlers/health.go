package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/symfx/internal/desk"
	"github.com/wonny/symfx/pkg/database"
)

// HealthHandler reports feed, store, hub and database status
type HealthHandler struct {
	svc     *desk.Service
	clients func() int
	db      *database.DB
	started time.Time
}

// NewHealthHandler creates a health handler; db may be nil
func NewHealthHandler(svc *desk.Service, clients func() int, db *database.DB) *HealthHandler {
	return &HealthHandler{
		svc:     svc,
		clients: clients,
		db:      db,
		started: time.Now(),
	}
}

// Check returns server health status
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":         "ok",
		"service":        "symfx-desk",
		"uptime":         time.Since(h.started).Round(time.Second).String(),
		"feed_connected": h.svc.Connected(),
		"store":          h.svc.Store().Stats(),
	}
	if h.clients != nil {
		body["browsers"] = h.clients()
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus, err := h.db.HealthCheck(ctx)
		body["database"] = dbStatus
		if err != nil {
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, status, body)
}
