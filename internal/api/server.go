package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claimsift/claimsift/internal/cache"
	"github.com/claimsift/claimsift/internal/checkpoint"
	"github.com/claimsift/claimsift/internal/claims"
	"github.com/claimsift/claimsift/internal/config"
	"github.com/claimsift/claimsift/internal/metrics"
	"github.com/claimsift/claimsift/internal/search"
)

// maxBatchSize bounds one verification request.
const maxBatchSize = 25

// Verifier runs a batch of claims through the pipeline.
type Verifier interface {
	VerifyClaims(ctx context.Context, batch []claims.Claim) []claims.VerificationResult
}

// ProviderReporter exposes the search router's health snapshot.
type ProviderReporter interface {
	ProviderHealth() []search.ProviderHealth
}

// Server wires HTTP handlers to the verification pipeline and its stats
// surfaces.
type Server struct {
	router       chi.Router
	verifier     Verifier
	providers    ProviderReporter
	searchCache  *cache.Store
	contentCache *cache.Store
	monitor      *checkpoint.Monitor
	logger       *zap.Logger
	cfg          config.Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	verifier Verifier,
	providers ProviderReporter,
	searchCache *cache.Store,
	contentCache *cache.Store,
	monitor *checkpoint.Monitor,
	logger *zap.Logger,
	cfg config.Config,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		verifier:     verifier,
		providers:    providers,
		searchCache:  searchCache,
		contentCache: contentCache,
		monitor:      monitor,
		logger:       logger.Named("api"),
		cfg:          cfg,
	}

	requestTimeout := time.Duration(cfg.Server.RequestTimeout) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 2 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)
	r.Use(timeoutMiddleware(requestTimeout))
	if cfg.Auth.Enabled {
		r.Use(s.apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/verify", s.verifyClaims)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/caches", s.cacheStats)
			r.Get("/providers", s.providerStats)
			r.Get("/checkpoints", s.checkpointStats)
		})
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// All dependencies are in-memory; readiness equals liveness.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type verifyRequest struct {
	Claims []claims.Claim `json:"claims"`
}

type verifyResponse struct {
	Results []claims.VerificationResult `json:"results"`
}

func (s *Server) verifyClaims(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Claims) == 0 {
		s.writeError(w, http.StatusBadRequest, "at least one claim required")
		return
	}
	if len(req.Claims) > maxBatchSize {
		s.writeError(w, http.StatusRequestEntityTooLarge, "too many claims in one batch")
		return
	}
	for i, claim := range req.Claims {
		if claim.Text == "" {
			s.writeError(w, http.StatusBadRequest, "claim text required")
			return
		}
		if claim.Type == "" {
			req.Claims[i].Type = claims.ClaimTypeGeneral
		}
	}

	results := s.verifier.VerifyClaims(r.Context(), req.Claims)
	s.writeJSON(w, http.StatusOK, verifyResponse{Results: results})
}

func (s *Server) cacheStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]cache.Stats{
		"search":  s.searchCache.Stats(),
		"content": s.contentCache.Stats(),
	})
}

func (s *Server) providerStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"providers": s.providers.ProviderHealth(),
	})
}

func (s *Server) checkpointStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"aggregate":     s.monitor.Report(),
		"recent_claims": s.monitor.Reports(),
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("panic", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func (s *Server) apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				s.writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
