// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/DrSkyle/aquagrid/pkg/config"
	"github.com/DrSkyle/aquagrid/pkg/engine"
	"github.com/DrSkyle/aquagrid/pkg/feeds"
)

// Server routes API requests to the engine.
type Server struct {
	engine    *engine.Engine
	cfg       config.ServerConfig
	router    *gin.Engine
	registry  *prometheus.Registry
	metrics   *httpMetrics
	baselines *baselineCache
	feeds     *feeds.Feeds
}

// New builds the router. reg also receives the engine metrics when the
// engine was created with engine.WithMetricsRegisterer(reg); nil creates a
// private registry.
func New(eng *engine.Engine, reg *prometheus.Registry) (*Server, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	f, err := feeds.Default()
	if err != nil {
		return nil, err
	}

	metrics, err := newHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil && !isAlreadyRegistered(err) {
		return nil, fmt.Errorf("failed to register go collector: %w", err)
	}

	cfg := eng.Config().Server
	s := &Server{
		engine:    eng,
		cfg:       cfg,
		registry:  reg,
		metrics:   metrics,
		baselines: newBaselineCache(cfg.CacheSize, eng.Build),
		feeds:     f,
	}
	s.initRouter()
	return s, nil
}

// Router returns the configured handler, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) initRouter() {
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(otelgin.Middleware("aquagrid"))
	s.router.Use(s.metrics.middleware())
	s.router.Use(requestLogger())
	s.router.Use(cors(s.cfg.CORSOrigins))
	s.router.Use(apiKeyAuth(s.cfg.APIKey))

	s.router.GET("/", handleRoot)
	s.router.GET("/healthz", handleHealth)
	s.router.GET("/metrics", gin.WrapH(metricsHandler(s.registry)))

	v1 := s.router.Group("/v1")
	{
		v1.GET("/network", s.handleNetwork)
		v1.POST("/simulate", s.handleSimulate)
		v1.GET("/sweep", s.handleSweep)
		v1.GET("/segments/:id", s.handleSegment)

		fg := v1.Group("/feeds")
		fg.GET("/alerts", s.handleFeed(func(f *feeds.Feeds) any { return f.Alerts }))
		fg.GET("/work-orders", s.handleFeed(func(f *feeds.Feeds) any { return f.WorkOrders }))
		fg.GET("/water-quality", s.handleFeed(func(f *feeds.Feeds) any { return f.WaterQuality }))
		fg.GET("/tips", s.handleFeed(func(f *feeds.Feeds) any { return f.Tips }))
	}
}

// Run serves until ctx is cancelled, then drains connections for up to
// ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.cfg.Addr, "auth", s.cfg.APIKey != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	slog.Info("HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
