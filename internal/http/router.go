package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"meeting-transcript-relay/internal/app"
	"meeting-transcript-relay/internal/observability"
	"meeting-transcript-relay/internal/service/session"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	h := newHandlers(application)
	origin := application.Cfg.Service.CORSAllowOrigin

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestMetrics(application.Metrics))

	// Set before mounting so every /api subrouter inherits it.
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := application.Ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes, one subrouter per endpoint so CORS advertises its single method.
	r.Route("/api/start", func(r chi.Router) {
		r.Use(cors(origin, http.MethodPost))
		r.Post("/", h.start)
	})
	r.Route("/api/stop", func(r chi.Router) {
		r.Use(cors(origin, http.MethodPost))
		r.Post("/", h.stop)
	})
	r.Route("/api/transcript", func(r chi.Router) {
		r.Use(cors(origin, http.MethodGet))
		r.Get("/", h.transcript)
	})
	r.Route("/api/live", func(r chi.Router) {
		r.Use(cors(origin, http.MethodGet))
		r.Get("/", h.live)
	})
	r.Route(session.WebhookPath, func(r chi.Router) {
		r.Use(cors(origin, http.MethodPost))
		r.Post("/", h.webhook)
	})

	return r
}
