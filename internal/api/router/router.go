// Package router assembles the HTTP surface: public booking endpoints,
// Prometheus metrics and the JWT-protected professional-management routes.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/donglares/agendia-platform/internal/booking"
	httpmiddleware "github.com/donglares/agendia-platform/internal/http/middleware"
	"github.com/donglares/agendia-platform/internal/professionals"
	"github.com/donglares/agendia-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger               *logging.Logger
	BookingHandler       *booking.Handler
	ProfessionalsHandler *professionals.Handler
	MetricsHandler       http.Handler
	AdminAuthSecret      string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", handleHealth)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.BookingHandler != nil {
		r.Post("/bookings", cfg.BookingHandler.Create)
		r.Route("/professionals/{professionalID}", func(r chi.Router) {
			r.Get("/agenda", cfg.BookingHandler.DayAgenda)
			r.Post("/bookings/{bookingID}/cancel", cfg.BookingHandler.Cancel)
			r.Post("/bookings/{bookingID}/complete", cfg.BookingHandler.Complete)
		})
	}

	if cfg.ProfessionalsHandler != nil {
		r.Route("/admin/professionals", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Post("/", cfg.ProfessionalsHandler.Create)
			admin.Get("/", cfg.ProfessionalsHandler.List)
			admin.Get("/{professionalID}", cfg.ProfessionalsHandler.Get)
			admin.Put("/{professionalID}/working-hours", cfg.ProfessionalsHandler.UpdateWorkingHours)
		})
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
