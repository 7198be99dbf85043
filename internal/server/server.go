package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/popular/internal/app"
	"github.com/vango-dev/popular/pkg/render"
	"github.com/vango-dev/popular/pkg/router"
)

const tracerName = "github.com/vango-dev/popular/internal/server"

// DefaultShutdownTimeout bounds graceful shutdown when Options leaves it zero.
const DefaultShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration

	Page  *app.Page
	Table *router.Table

	// Document is the page shell. Markup and Payload are filled in per
	// request.
	Document render.Document

	// Static serves files under StaticPrefix. Nil disables static serving.
	Static       http.Handler
	StaticPrefix string

	// Metrics enables the metrics middleware and endpoint. Nil disables both.
	Metrics     *Metrics
	MetricsPath string

	// Reload is mounted at ReloadPath in dev mode.
	Reload     http.Handler
	ReloadPath string

	Logger *slog.Logger
}

// Server is the HTTP front end: static bundle, health and metrics
// endpoints, and server-side rendering for every other path.
type Server struct {
	addr            string
	shutdownTimeout time.Duration

	page    *app.Page
	table   *router.Table
	doc     render.Document
	metrics *Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	router chi.Router
}

// New creates a Server and its routes.
func New(opts Options) *Server {
	s := &Server{
		addr:            opts.Addr,
		shutdownTimeout: opts.ShutdownTimeout,
		page:            opts.Page,
		table:           opts.Table,
		doc:             opts.Document,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
		tracer:          otel.Tracer(tracerName),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = DefaultShutdownTimeout
	}
	if s.table == nil {
		s.table = app.NewTable()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.instrument)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	if s.metrics != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, s.metrics.Handler())
	}
	if opts.Static != nil && opts.StaticPrefix != "" {
		r.Handle(opts.StaticPrefix+"*", opts.Static)
	}
	if opts.Reload != nil && opts.ReloadPath != "" {
		r.Handle(opts.ReloadPath, opts.Reload)
	}

	r.Get("/*", s.handlePage)

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
