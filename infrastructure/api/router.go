package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger is the part of the store the health endpoint needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter mounts the message endpoint on every path except /health and /metrics.
func NewRouter(log *slog.Logger, messages *MessageHandler, store Pinger) *chi.Mux {
	r := chi.NewRouter()

	// Metrics first to capture all requests
	r.Use(Metrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(log))
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", health(store))

	r.Handle("/", messages)
	r.Handle("/messages", messages)
	r.NotFound(messages.ServeHTTP)
	r.MethodNotAllowed(messages.InvalidMethod)
	return r
}

func health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := store.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
