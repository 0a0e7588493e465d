// Package server exposes the decision pipeline and the integrity lock over
// HTTP. It is the outer boundary: request decoding, instrumentation, and
// rate limiting live here, never in the engine itself.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/star-engine/internal/alphabet"
	"github.com/sells-group/star-engine/internal/config"
	"github.com/sells-group/star-engine/internal/engine"
	"github.com/sells-group/star-engine/internal/integrity"
	"github.com/sells-group/star-engine/internal/monitoring"
)

// Server wires the engine, the integrity protocol, and the vowel registers
// behind an HTTP router.
type Server struct {
	cfg       *config.Config
	engine    *engine.Engine
	protocol  *integrity.Protocol
	recorder  *monitoring.Recorder
	registers *alphabet.Registers
}

// New creates a Server. The recorder may be shared with a background
// monitoring checker.
func New(cfg *config.Config, eng *engine.Engine, protocol *integrity.Protocol, recorder *monitoring.Recorder) *Server {
	return &Server{
		cfg:       cfg,
		engine:    eng,
		protocol:  protocol,
		recorder:  recorder,
		registers: alphabet.NewRegisters(),
	}
}

// Router builds the chi router with the full middleware stack and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(rateLimit(s.cfg.Server.RatePerSecond, s.cfg.Server.RateBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/config", s.handleConfig)
	r.Get("/metrics", s.handleMetrics)

	r.Post("/invariant", s.handleInvariant)
	r.Post("/growth", s.handleGrowth)
	r.Post("/tif", s.handleTIF)
	r.Post("/qci", s.handleQCI)
	r.Post("/density", s.handleDensity)
	r.Post("/repentance", s.handleRepentance)
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/analyze/batch", s.handleAnalyzeBatch)
	r.Post("/lock", s.handleLock)

	r.Route("/alphabet", func(r chi.Router) {
		r.Post("/sequence", s.handleAlphabetSequence)
		r.Post("/vowel", s.handleAlphabetVowel)
		r.Get("/status", s.handleAlphabetStatus)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return eris.Wrap(err, "server: decode request body")
	}
	return nil
}
