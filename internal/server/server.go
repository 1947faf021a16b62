// Package server is the HTTP front of the pipeline: multipart PDF upload in,
// one JSON entry per document out.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/sugar-reports/internal/common"
	"github.com/joseph-ayodele/sugar-reports/internal/core/async"
	"github.com/joseph-ayodele/sugar-reports/internal/export"
)

// Server holds the upload handlers. Build it with New and serve Handler().
type Server struct {
	logger         *slog.Logger
	batch          *async.Batch
	exporter       *export.Service
	limiter        *rate.Limiter
	gatherer       prometheus.Gatherer
	maxUploadBytes int64
	allowedOrigins []string
}

// New wires the upload service. gatherer may be nil, which disables /metrics.
func New(cfg *common.Config, runner async.DocumentRunner, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if cfg.Server.RateLimitPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), max(cfg.Server.RateLimitBurst, 1))
	}
	return &Server{
		logger: logger,
		batch: async.NewBatch(runner, logger,
			async.WithWorkers(cfg.Pipeline.Workers),
			async.WithProcessTimeout(cfg.Pipeline.DocumentTimeout),
		),
		exporter:       export.NewService(logger),
		limiter:        limiter,
		gatherer:       gatherer,
		maxUploadBytes: cfg.Server.MaxUploadBytes,
		allowedOrigins: cfg.Server.AllowedOrigins,
	}
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /upload", s.rateLimited(http.HandlerFunc(s.handleUpload)))
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
	})
	return c.Handler(mux)
}

func (s *Server) rateLimited(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.logger.Warn("upload rate limited", "remote_addr", r.RemoteAddr)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
