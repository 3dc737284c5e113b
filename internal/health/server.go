package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"toxeval/internal"
)

// Server is a small liveness/readiness sidecar, served on its own port so
// probes stay reachable while the main API is saturated
type Server struct {
	router *chi.Mux
	db     *sqlx.DB
	logger *internal.Logger
	start  time.Time
}

// NewServer creates the health sidecar. db may be nil when the process
// runs without persistence; readiness then reports healthy on its own.
func NewServer(db *sqlx.DB) *Server {
	s := &Server{
		router: chi.NewRouter(),
		db:     db,
		logger: internal.DefaultLogger,
		start:  time.Now(),
	}
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.handleLiveness)
	s.router.Get("/readyz", s.handleReadiness)
	return s
}

// Run serves probes until the context is cancelled
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{Addr: ":" + port, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("health sidecar listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
