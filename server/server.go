package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/server/endpoint"
	"github.com/kbukum/forohub/server/middleware"
)

// Server is forohub's HTTP server: a Gin engine mounted on a root ServeMux,
// wrapped by the transport middleware. It serves HTTPS with HTTP/2 when
// server.tls is configured and HTTP/1.1 plus h2c otherwise.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	engine     *gin.Engine
	mux        *http.ServeMux
	handler    http.Handler
	config     Config
	started    time.Time
	log        *logger.Logger
}

// New creates a Server. cfg should have had ApplyDefaults called and
// Validate succeed.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	if log.GetLogger().GetLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, trusting none", map[string]interface{}{
			"error": err.Error(),
		})
		_ = engine.SetTrustedProxies(nil)
	}
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	stack := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.CORS(&cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.RequestLogger(log.WithComponent("http")),
	)
	handler := stack(mux)

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      h2c.NewHandler(handler, h2s),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		mux:        mux,
		handler:    handler,
		config:     cfg,
		started:    time.Now(),
		log:        log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the fully wrapped handler, without h2c. Tests drive it
// with httptest.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Handle mounts an http.Handler at pattern on the root ServeMux, next to Gin.
// The transport middleware still applies.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// RegisterDefaultEndpoints registers /health and /info.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName, s.started))
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	tlsConfig, err := s.config.TLS.Build()
	if err != nil {
		return err
	}
	s.log.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
		"tls":  tlsConfig != nil,
	})

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	serve := func() error { return s.httpServer.Serve(listener) }
	if tlsConfig != nil {
		s.httpServer.TLSConfig = tlsConfig
		serve = func() error { return s.httpServer.ServeTLS(listener, "", "") }
	}

	go func() {
		if err := serve(); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
