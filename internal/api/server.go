// Package api serves the redraw pipeline over HTTP.
//
// Every request carries the full graph and hidden set, so the server holds
// no per-user state; the pipeline cache makes repeated redraws of the same
// view cheap.
//
//	POST /v1/layout      graph + view -> layout JSON
//	POST /v1/render      graph + view + render options -> artifact
//	POST /v1/components  graph + hidden set -> strongly connected components
//	GET  /healthz
package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/foldgraph/internal/config"
	"github.com/matzehuels/foldgraph/pkg/observability"
	"github.com/matzehuels/foldgraph/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 10 << 20

// Server handles API requests with a shared [pipeline.Runner].
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	maxBody  int64
	validate *validator.Validate
}

// NewServer creates a server. A maxBody of zero uses DefaultMaxBodyBytes.
func NewServer(runner *pipeline.Runner, logger *log.Logger, maxBody int64) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Server{
		runner:   runner,
		logger:   logger,
		maxBody:  maxBody,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
		r.Post("/render", s.render)
		r.Post("/components", s.components)
	})
	return r
}

// observe logs every request and reports it to the API hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.API().OnRequest(r.Context(), r.Method, route)
		observability.API().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"duration", d)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
