package handlers

import (
	"net/http"

	"github.com/wonny/symfx/internal/external/backend"
	"github.com/wonny/symfx/pkg/logger"
)

// LoginPath is where the desk lands after logout
const LoginPath = "/login"

// AuthHandler proxies logout to the backend
type AuthHandler struct {
	backend *backend.Client
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(client *backend.Client, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		backend: client,
		logger:  log,
	}
}

// Logout calls the backend with the browser's cookies and always ends on
// the login page, whatever the backend answered.
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookies, err := h.backend.Logout(r.Context(), r.Cookies())
	if err != nil {
		h.logger.WithError(err).Warn("Backend logout failed")
	}
	for _, ck := range cookies {
		http.SetCookie(w, ck)
	}

	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
