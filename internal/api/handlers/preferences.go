package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/symfx/internal/preferences"
	"github.com/wonny/symfx/internal/widgets"
	"github.com/wonny/symfx/pkg/logger"
)

// PreferencesHandler serves theme, layout and widget configuration
type PreferencesHandler struct {
	store  preferences.Store
	user   string
	logger *logger.Logger
}

// NewPreferencesHandler creates a handler for the desk's single user
func NewPreferencesHandler(store preferences.Store, user string, log *logger.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		store:  store,
		user:   user,
		logger: log,
	}
}

// GetTheme returns the stored theme
// GET /api/theme
func (h *PreferencesHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.store.Theme(r.Context(), h.user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read theme")
		respondError(w, http.StatusInternalServerError, "Failed to read theme")
		return
	}

	respondJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}

// PutTheme stores a theme
// PUT /api/theme
func (h *PreferencesHandler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.saveTheme(w, r, preferences.Theme(req.Theme))
}

// ToggleTheme flips between light and dark
// POST /api/theme/toggle
func (h *PreferencesHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	current, err := h.store.Theme(r.Context(), h.user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read theme")
		respondError(w, http.StatusInternalServerError, "Failed to read theme")
		return
	}

	h.saveTheme(w, r, current.Toggle())
}

func (h *PreferencesHandler) saveTheme(w http.ResponseWriter, r *http.Request, theme preferences.Theme) {
	err := h.store.SetTheme(r.Context(), h.user, theme)
	if errors.Is(err, preferences.ErrInvalidTheme) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to save theme")
		respondError(w, http.StatusInternalServerError, "Failed to save theme")
		return
	}

	h.logger.WithField("theme", theme).Info("Theme changed")
	respondJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}

// GetLayout returns the trading layout
// GET /api/layout
func (h *PreferencesHandler) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.store.Layout(r.Context(), h.user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read layout")
		respondError(w, http.StatusInternalServerError, "Failed to read layout")
		return
	}

	w.Header().Set("ETag", `"`+layout.Fingerprint()+`"`)
	respondJSON(w, http.StatusOK, layout)
}

// PutLayout stores the trading layout
// PUT /api/layout
func (h *PreferencesHandler) PutLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	layout := preferences.Layout{
		Cols:      preferences.GridColumns,
		RowHeight: req.RowHeight,
		Panels:    req.Panels,
	}
	err := h.store.SetLayout(r.Context(), h.user, layout)
	if errors.Is(err, preferences.ErrInvalidLayout) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to save layout")
		respondError(w, http.StatusInternalServerError, "Failed to save layout")
		return
	}

	saved, err := h.store.Layout(r.Context(), h.user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read layout")
		return
	}
	w.Header().Set("ETag", `"`+saved.Fingerprint()+`"`)
	respondJSON(w, http.StatusOK, saved)
}

// GetTicker returns the ticker-tape config for the current theme
// GET /api/widgets/ticker
func (h *PreferencesHandler) GetTicker(w http.ResponseWriter, r *http.Request) {
	theme, err := h.store.Theme(r.Context(), h.user)
	if err != nil {
		h.logger.WithError(err).Warn("Falling back to default theme for ticker")
		theme = preferences.DefaultTheme
	}

	respondJSON(w, http.StatusOK, widgets.Ticker(theme))
}
