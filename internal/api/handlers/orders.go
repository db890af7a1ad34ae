package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/symfx/internal/desk"
	"github.com/wonny/symfx/internal/orders"
	"github.com/wonny/symfx/pkg/logger"
)

// OrdersHandler serves the two views and the rate edit flow
// ⭐ SSOT: 주문 API 핸들러는 이 구조체에서만
type OrdersHandler struct {
	svc    *desk.Service
	logger *logger.Logger
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(svc *desk.Service, log *logger.Logger) *OrdersHandler {
	return &OrdersHandler{
		svc:    svc,
		logger: log,
	}
}

// GetView returns one page of a view
// GET /api/orders/{view}?page=N
func (h *OrdersHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view := mux.Vars(r)["view"]

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		page = n
	}

	result, err := h.svc.Page(view, page)
	if errors.Is(err, desk.ErrUnknownView) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to derive view")
		respondError(w, http.StatusInternalServerError, "Failed to derive view")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ChangeRate applies a rate edit locally; nothing is sent until blur
// PUT /api/orders/{quoteId}/rate
func (h *OrdersHandler) ChangeRate(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]

	var req RateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	edited, err := h.svc.Editor().ChangeRate(quoteID, req.Rate)
	if errors.Is(err, orders.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("quote_id", quoteID).Error("Failed to apply rate edit")
		respondError(w, http.StatusInternalServerError, "Failed to apply rate edit")
		return
	}

	respondJSON(w, http.StatusOK, edited)
}

// Blur submits the edited order to the backend in the background
// POST /api/orders/{quoteId}/blur
func (h *OrdersHandler) Blur(w http.ResponseWriter, r *http.Request) {
	quoteID := mux.Vars(r)["quoteId"]

	err := h.svc.Editor().Blur(r.Context(), quoteID)
	switch {
	case errors.Is(err, desk.ErrNotEditing):
		// focus left a field that was never changed
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, orders.ErrNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case err != nil:
		h.logger.WithError(err).WithField("quote_id", quoteID).Error("Failed to submit order")
		respondError(w, http.StatusInternalServerError, "Failed to submit order")
	default:
		respondJSON(w, http.StatusAccepted, map[string]string{
			"quoteId": quoteID,
			"phase":   string(h.svc.Editor().Phase(quoteID)),
		})
	}
}
