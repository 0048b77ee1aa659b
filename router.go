package main

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gbme/platform-assistant/config"
	"github.com/gbme/platform-assistant/handlers"
	"github.com/gbme/platform-assistant/middleware"
	"github.com/gbme/platform-assistant/ui"
)

func newRouter(cfg *config.Config, api *handlers.API, hub *handlers.StatsHub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Widget
	r.Get("/", ui.Index)
	r.Handle("/static/*", ui.Static())
	r.Get("/ws/stats", hub.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", api.Stats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.ChatRateLimit))
			r.Post("/chat", api.Chat)
			r.Post("/utilization", api.Utilization)
		})
	})

	return r
}

// originChecker restricts websocket upgrades to the CORS origins; nil allows any origin.
func originChecker(cfg *config.Config) func(r *http.Request) bool {
	if cfg.OriginsDefaulted() {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
			return true
		}
		return slices.Contains(cfg.AllowedOrigins, origin)
	}
}
