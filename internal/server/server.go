// Package server exposes the history service and the comparison operations
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/jsondiff/internal/fetch"
	"github.com/oakwood-commons/jsondiff/internal/history"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

const (
	DefaultAddr         = "127.0.0.1:8787"
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultHistoryLimit = 50
	DefaultLineHeight   = 20
	DefaultVisibleLines = 30

	shutdownTimeout = 10 * time.Second
	maxRequestBytes = 32 << 20
)

// Options configures a Server. History is required; everything else has a
// default.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	History      history.Store
	HistoryLimit int

	// Fetcher defaults to a direct client recording into History.
	Fetcher *fetch.Client

	LineHeight   float64
	VisibleLines int

	Logger *logr.Logger
	Now    func() time.Time
}

// Server is the jsondiff HTTP API.
type Server struct {
	opts   Options
	log    logr.Logger
	router chi.Router
}

// New validates opts and builds the router.
func New(opts Options) (*Server, error) {
	if opts.History == nil {
		return nil, errors.New("server: history store is required")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = DefaultLineHeight
	}
	if opts.VisibleLines <= 0 {
		opts.VisibleLines = DefaultVisibleLines
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New("", 0, opts.History)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	lgr := logger.GetNoopLogger()
	if opts.Logger != nil {
		lgr = opts.Logger
	}

	s := &Server{opts: opts, log: *lgr}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/record", s.handleRecord)
	r.Get("/history", s.handleHistory)

	r.Route("/api", func(r chi.Router) {
		r.Post("/compare", s.handleCompare)
		r.Post("/format", s.handleFormat)
		r.Post("/paths", s.handlePaths)
		r.Post("/fields", s.handleFields)
		r.Post("/locate", s.handleLocate)
		r.Post("/fetch", s.handleFetch)
		r.Route("/export", func(r chi.Router) {
			r.Post("/pdf", s.handleExportPDF)
			r.Post("/html", s.handleExportHTML)
		})
	})
	return r
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and waits for pending history writes.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       2 * s.opts.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return logger.WithLogger(ctx, &s.log) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.opts.Fetcher.Wait()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// requestLogger logs one line per request and makes the logger available to
// handlers through the request context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		lgr := s.log.WithValues("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(logger.WithLogger(r.Context(), &lgr)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		lgr.Info("request",
			logger.MethodKey, r.Method,
			logger.PathKey, r.URL.Path,
			logger.StatusKey, status,
			logger.DurationKey, time.Since(start).String())
	})
}
