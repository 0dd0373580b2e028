// Package server exposes introspection results over HTTP.
//
// Routes:
//
//	GET /healthz
//	GET /tables
//	GET /tables/{table}
//	GET /tables/{table}/columns
//	GET /tables/{table}/columns/{column}
//	GET /tables/{table}/indexes
//	GET /tables/{table}/indexes/{index}
//
// Every route that returns column types accepts ?normalize=true.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/myschema/internal/errs"
	"github.com/koustreak/myschema/internal/logger"
	"github.com/koustreak/myschema/internal/schema"
)

// Inspector is the read side of introspect.Introspector.
type Inspector interface {
	Tables(ctx context.Context) ([]*schema.Table, error)
	Table(ctx context.Context, table string) (*schema.Table, error)
	Columns(ctx context.Context, table string) ([]*schema.Column, error)
	Column(ctx context.Context, table, column string) (*schema.Column, error)
	Indexes(ctx context.Context, table string) ([]*schema.Index, error)
	Index(ctx context.Context, table, index string) (*schema.Index, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Normalize is applied when a request carries no normalize parameter.
	Normalize bool
}

// Server serves the schema API.
type Server struct {
	cfg       Config
	inspector Inspector
	pinger    Pinger
	log       *logger.Logger
	router    chi.Router
}

// New builds the router. log may be nil.
func New(cfg Config, inspector Inspector, pinger Pinger, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:       cfg,
		inspector: inspector,
		pinger:    pinger,
		log:       log.With().Str("component", "server").Logger(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", s.handleTables)
		r.Route("/{table}", func(r chi.Router) {
			r.Get("/", s.handleTable)
			r.Get("/columns", s.handleColumns)
			r.Get("/columns/{column}", s.handleColumn)
			r.Get("/indexes", s.handleIndexes)
			r.Get("/indexes/{index}", s.handleIndex)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errs.New(errs.ErrKindNotFound, "no route for "+r.URL.Path))
	})
	return r
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.InfoWith("listening", map[string]interface{}{"addr": s.cfg.Addr})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(errs.ErrKindConnectionFailed, "http server failed", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, "http server shutdown", err)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.InfoWith("request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}
