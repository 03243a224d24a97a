// Package server exposes the settlement engine over a JSON HTTP API. Each
// route maps onto one engine operation and returns plain records; no
// transport envelope.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moimlab/settleup/internal/service"
	"github.com/moimlab/settleup/internal/storage"
)

// Router wires the HTTP routes to the service layer.
type Router struct {
	mux          *chi.Mux
	events       *service.EventService
	buckets      *service.BucketService
	participants *service.ParticipantService
}

// New builds the HTTP handler for the API.
func New(events *service.EventService, buckets *service.BucketService, participants *service.ParticipantService) http.Handler {
	r := &Router{
		mux:          chi.NewRouter(),
		events:       events,
		buckets:      buckets,
		participants: participants,
	}
	r.routes()
	return loggingMiddleware(corsMiddleware(r.mux))
}

func (r *Router) routes() {
	r.mux.Route("/api", func(api chi.Router) {
		api.Get("/events", r.handleListEvents)
		api.Post("/events", r.handleCreateEvent)
		api.Get("/events/{eventID}", r.handleGetEvent)
		api.Delete("/events/{eventID}", r.handleDeleteEvent)

		api.Get("/events/{eventID}/buckets", r.handleListBuckets)
		api.Post("/events/{eventID}/buckets", r.handleCreateBucket)
		api.Put("/events/{eventID}/buckets/{bucketID}", r.handleUpdateBucket)
		api.Delete("/events/{eventID}/buckets/{bucketID}", r.handleDeleteBucket)
		api.Delete("/events/{eventID}/buckets/{bucketID}/participants/{participantID}", r.handleRemoveFromBucket)

		api.Get("/events/{eventID}/participants", r.handleListParticipants)
		api.Post("/events/{eventID}/participants", r.handleBulkAdd)
		api.Put("/events/{eventID}/participants/{participantID}/settled", r.handleSetSettled)
	})

	r.mux.Handle("/metrics", promhttp.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's error taxonomy onto HTTP statuses: validation
// to 400, the last-bucket invariant to 409, missing records to 404, anything
// else to an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrLastBucket):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, storage.ErrEventNotFound),
		errors.Is(err, storage.ErrBucketNotFound),
		errors.Is(err, storage.ErrParticipantNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// loggingMiddleware logs all incoming requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
