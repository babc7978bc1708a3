// Package server assembles the HTTP router of the catalog daemon.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/catalog/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/engine"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/catalog/internal/infrastructure/tracing"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and its router
type Server struct {
	router  *gin.Engine
	http    *http.Server
	tracer  *tracing.Tracer
	logger  *zap.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// New creates a server serving eng. hub must be the engine's start sink so
// start requests reach stream clients.
func New(cfg *config.Config, eng *engine.Engine, hub *ws.Hub, metrics *monitoring.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := logger
	logger = logger.Named("server")

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	// Item ids contain slashes and arrive path-escaped.
	router.UseRawPath = true

	tracer := tracing.New(base)

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	apihttp.NewHandlers(eng, hub.Clients).Register(router)
	router.GET("/stream", ws.NewHandler(hub, eng, base).HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	return &Server{
		router:  router,
		tracer:  tracer,
		http:    &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Close is called.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(ctx)
	s.tracer.Close()
	return err
}
