// Package server exposes the snapshot analytics as a JSON API for a
// thin presentation layer.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/storage"
)

// SnapshotSource is the read surface the server needs from storage.
type SnapshotSource interface {
	ListSnapshots(ctx context.Context, limit int) ([]storage.SnapshotMeta, error)
	GetSnapshot(ctx context.Context, id int64) (storage.SnapshotMeta, []health.Scored, error)
	LatestSnapshot(ctx context.Context) (storage.SnapshotMeta, []health.Scored, error)
}

// Server serves read-only analytics over HTTP.
type Server struct {
	source SnapshotSource
	logger zerolog.Logger

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New constructs a Server around a snapshot source. Metrics live in a
// server-owned registry so constructing more than one Server is safe.
func New(source SnapshotSource, logger zerolog.Logger) *Server {
	s := &Server{
		source:   source,
		logger:   logger.With().Str("component", "server").Logger(),
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shazbot_http_requests_total",
			Help: "HTTP requests served, by method and path.",
		}, []string{"method", "path"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shazbot_http_request_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	s.registry.MustRegister(s.requests, s.latency)
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(s.instrument)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.Get("/api/snapshots", s.handleListSnapshots)
	mux.Get("/api/snapshots/{id}", s.handleSnapshotReport)
	mux.Get("/api/snapshots/{id}/keywords", s.handleKeywords)
	mux.Get("/api/trend", s.handleTrend)
	mux.Get("/api/compare", s.handleCompare)
	mux.Get("/api/declined", s.handleDeclined)

	return mux
}

// Start blocks serving HTTP until the listener fails or the context is
// cancelled.
func (s *Server) Start(ctx context.Context, addr string, readHeaderTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info().Str("addr", addr).Msg("analytics server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.requests.WithLabelValues(r.Method, r.URL.Path).Inc()
		s.latency.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("latency", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	_ = enc.Encode(v)
}
