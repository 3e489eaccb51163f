// Package shell is the HTTP server that delivers the single page application:
// it proxies to a bundler dev server or serves the built assets, and falls back
// to the index document for every other path so that client side routing runs.
package shell

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackielii/spaview"
	"github.com/jackielii/spaview/internal/config"
	"github.com/jackielii/spaview/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg     config.Config
	logger  *zap.Logger
	table   *spaview.RouteTable
	metrics *metrics.Metrics
	hub     *reloadHub
	watcher *distWatcher
	handler http.Handler
}

type Option func(*Server)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New builds the server. table is used for the route listing and, with
// strict_routes, to decide the fallback status; it may be nil.
func New(cfg config.Config, table *spaview.RouteTable, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Server{
		cfg:    cfg,
		logger: zap.NewNop(),
		table:  table,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New("")
	}
	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = handler
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, "/metrics", reloadPath))
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)

	// API routes go first; everything else reaches the asset handling below.
	r.Get("/hello", s.hello)
	r.Get("/api/routes", s.listRoutes)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	switch {
	case s.cfg.Production():
		static, err := newStaticHandler(s.cfg.DistDir, staticOptions{
			cache:  cacheProduction,
			table:  s.table,
			strict: s.cfg.StrictRoutes,
			logger: s.logger,
		})
		if err != nil {
			return nil, err
		}
		r.NotFound(static.ServeHTTP)
		s.logger.Info("serving built assets", zap.String("dir", s.cfg.DistDir))

	case s.cfg.DevProxy != "":
		proxy, err := newDevProxy(s.cfg.DevProxy, s.logger)
		if err != nil {
			return nil, err
		}
		r.NotFound(proxy.ServeHTTP)
		s.logger.Info("proxying to bundler dev server", zap.String("target", s.cfg.DevProxy))

	default:
		s.hub = newReloadHub(s.logger)
		static, err := newStaticHandler(s.cfg.DistDir, staticOptions{
			cache:        cacheNone,
			table:        s.table,
			strict:       s.cfg.StrictRoutes,
			logger:       s.logger,
			injectReload: true,
		})
		if err != nil {
			return nil, err
		}
		watcher, err := newDistWatcher(s.cfg.DistDir, reloadDebounce, s.hub.Reload, s.logger)
		if err != nil {
			s.logger.Warn("live reload disabled", zap.Error(err))
		} else {
			s.watcher = watcher
		}
		r.Get(reloadPath, s.hub.ServeWS)
		r.NotFound(static.ServeHTTP)
		s.logger.Info("serving assets from disk with live reload", zap.String("dir", s.cfg.DistDir))
	}
	return r, nil
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.hub != nil {
		srv.RegisterOnShutdown(s.hub.Close)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", srv.Addr), zap.String("mode", string(s.cfg.Mode)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if s.watcher != nil {
		g.Go(func() error {
			return s.watcher.Run(gctx)
		})
	}
	return g.Wait()
}
