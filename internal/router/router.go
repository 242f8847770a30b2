package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/vetnav/facility-agent/internal/api/finder"
)

// Config contains dependencies needed for the router setup
type Config struct {
	FacilityHandler *finder.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Route("/facilities", func(r chi.Router) {
			r.Post("/find", cfg.FacilityHandler.Find)
			r.Post("/find-stream", cfg.FacilityHandler.FindStream)
			r.Get("/search", cfg.FacilityHandler.Search)
			r.Post("/geocode", cfg.FacilityHandler.Geocode)
			r.Get("/{facilityID}", cfg.FacilityHandler.Details)
		})
	})

	return r
}
