package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// watchStatus records the outcome of the latest validation round of a
// manifest watch and exposes it over HTTP.
type watchStatus struct {
	mu      sync.RWMutex
	rounds  int
	entries int
	lastErr error
	lastAt  time.Time

	registry    *prometheus.Registry
	roundsTotal *prometheus.CounterVec
	entryGauge  prometheus.Gauge
	lastRound   prometheus.Gauge
}

func newWatchStatus() *watchStatus {
	s := &watchStatus{
		registry: prometheus.NewRegistry(),
		roundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "modfactory",
				Name:      "validation_rounds_total",
				Help:      "Total number of manifest validation rounds, by result",
			},
			[]string{"result"},
		),
		entryGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "modfactory",
			Name:      "manifest_entries",
			Help:      "Number of entries in the last loaded manifests",
		}),
		lastRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "modfactory",
			Name:      "last_validation_timestamp_seconds",
			Help:      "Unix time of the last validation round",
		}),
	}
	s.registry.MustRegister(s.roundsTotal, s.entryGauge, s.lastRound)
	return s
}

func (s *watchStatus) record(entries int, err error) {
	now := time.Now()
	s.mu.Lock()
	s.rounds++
	s.entries = entries
	s.lastErr = err
	s.lastAt = now
	s.mu.Unlock()

	result := "ok"
	if err != nil {
		result = "failed"
	}
	s.roundsTotal.WithLabelValues(result).Inc()
	s.entryGauge.Set(float64(entries))
	s.lastRound.Set(float64(now.Unix()))
}

// router serves /health (liveness), /health/ready (the last round passed)
// and /metrics.
func (s *watchStatus) router(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Debug("Health check endpoint hit.", "remote_addr", req.RemoteAddr, "path", req.URL.Path)
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/health", s.liveness)
	r.Get("/health/live", s.liveness)
	r.Get("/health/ready", s.readiness)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

func (s *watchStatus) liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *watchStatus) readiness(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.rounds == 0:
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "pending"})
	case s.lastErr != nil:
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":     "invalid",
			"error":      s.lastErr.Error(),
			"entries":    s.entries,
			"checked_at": s.lastAt.Format(time.RFC3339),
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"entries":    s.entries,
			"checked_at": s.lastAt.Format(time.RFC3339),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// startHealthcheckServer serves handler on port until the returned stop
// function is called.
func startHealthcheckServer(logger *slog.Logger, port int, handler http.Handler) (stop func(), err error) {
	logger.Debug("Configuring health check server.")
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("health check server: %w", err)
	}

	go func() {
		logger.Info("Health check server starting.", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed.", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Health check server shutdown failed.", "error", err)
		}
	}, nil
}
