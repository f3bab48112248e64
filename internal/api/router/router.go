package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adarshrealtor/lead-assistant/internal/conversation"
	"github.com/adarshrealtor/lead-assistant/internal/dashboard"
	httpmiddleware "github.com/adarshrealtor/lead-assistant/internal/http/middleware"
	"github.com/adarshrealtor/lead-assistant/internal/leads"
	"github.com/adarshrealtor/lead-assistant/internal/settings"
	"github.com/adarshrealtor/lead-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	SettingsHandler    *settings.Handler
	DashboardHandler   *dashboard.Handler
	SimulatorHandler   *conversation.Handler
	LeadFeed           http.Handler
	MetricsHandler     http.Handler
	SimulatorLimiter   *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.LeadFeed != nil {
		r.Handle("/ws/leads", cfg.LeadFeed)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Compress(5))

		if cfg.SettingsHandler != nil {
			api.Get("/settings", cfg.SettingsHandler.Get)
			api.Put("/settings", cfg.SettingsHandler.Put)
		}
		if cfg.DashboardHandler != nil {
			api.Get("/dashboard", cfg.DashboardHandler.Get)
		}
		if cfg.LeadsHandler != nil {
			api.Get("/leads", cfg.LeadsHandler.ListLeads)
			api.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
		}
		if cfg.SimulatorHandler != nil {
			api.Route("/simulator/sessions", func(sim chi.Router) {
				if cfg.SimulatorLimiter != nil {
					sim.Use(cfg.SimulatorLimiter.Middleware)
				}
				sim.Post("/", cfg.SimulatorHandler.Create)
				sim.Route("/{sessionID}", func(s chi.Router) {
					s.Get("/", cfg.SimulatorHandler.Get)
					s.Delete("/", cfg.SimulatorHandler.Delete)
					s.Post("/restart", cfg.SimulatorHandler.Restart)
					s.Post("/messages", cfg.SimulatorHandler.Message)
				})
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
