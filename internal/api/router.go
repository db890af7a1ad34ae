package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/wonny/symfx/internal/api/handlers"
	"github.com/wonny/symfx/pkg/logger"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Health      *handlers.HealthHandler
	Orders      *handlers.OrdersHandler
	Preferences *handlers.PreferencesHandler
	Auth        *handlers.AuthHandler
	Pages       *handlers.PagesHandler
	WS          http.HandlerFunc
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, corsOrigins []string, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Check).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Orders
	api.HandleFunc("/orders/{view}", h.Orders.GetView).Methods("GET")
	api.HandleFunc("/orders/{quoteId}/rate", h.Orders.ChangeRate).Methods("PUT")
	api.HandleFunc("/orders/{quoteId}/blur", h.Orders.Blur).Methods("POST")

	// Preferences
	api.HandleFunc("/theme", h.Preferences.GetTheme).Methods("GET")
	api.HandleFunc("/theme", h.Preferences.PutTheme).Methods("PUT")
	api.HandleFunc("/theme/toggle", h.Preferences.ToggleTheme).Methods("POST")
	api.HandleFunc("/layout", h.Preferences.GetLayout).Methods("GET")
	api.HandleFunc("/layout", h.Preferences.PutLayout).Methods("PUT")
	api.HandleFunc("/widgets/ticker", h.Preferences.GetTicker).Methods("GET")

	// Session
	r.HandleFunc("/auth/logout", h.Auth.Logout).Methods("POST")

	// Live views
	if h.WS != nil {
		r.HandleFunc("/ws", h.WS).Methods("GET")
	}

	// Pages
	r.HandleFunc("/", h.Pages.Dashboard).Methods("GET")
	r.HandleFunc("/trading-layout", h.Pages.TradingLayout).Methods("GET")
	r.HandleFunc(handlers.LoginPath, h.Pages.Login).Methods("GET")

	// Apply middleware
	r.Use(metricsMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	if len(corsOrigins) == 0 {
		return r
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
