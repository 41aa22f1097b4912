package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/magtcoin/presale-backend/internal/api/middleware"
	"github.com/magtcoin/presale-backend/internal/api/rest"
	"github.com/magtcoin/presale-backend/internal/logger"
	"github.com/magtcoin/presale-backend/internal/presale"
	"github.com/magtcoin/presale-backend/internal/ratelimit"
	"github.com/magtcoin/presale-backend/internal/rpc"
)

// Per-IP request budgets. The RPC proxy gets its own tighter window because
// every request there costs an outbound call to the upstream provider.
const (
	generalLimitMax    = 300
	generalLimitWindow = 15 * time.Minute
	rpcLimitMax        = 120
	rpcLimitWindow     = time.Minute

	limiterPruneInterval = 5 * time.Minute
)

// Config holds the server configuration
type Config struct {
	Debug          bool
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	service    *presale.Service
	gateway    *rpc.Gateway
	httpServer *http.Server
	stopPrune  chan struct{}
}

// New creates a new API server
func New(cfg Config, service *presale.Service, gateway *rpc.Gateway) *Server {
	return &Server{
		config:    cfg,
		service:   service,
		gateway:   gateway,
		stopPrune: make(chan struct{}),
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.SetupCORS(s.config.AllowedOrigins))

	// Per-IP rate limiters, pruned in the background so idle IPs do not
	// accumulate in the limiter state
	generalLimiter := ratelimit.New(generalLimitMax, generalLimitWindow)
	rpcLimiter := ratelimit.New(rpcLimitMax, rpcLimitWindow)
	generalLimiter.StartPruning(limiterPruneInterval, s.stopPrune)
	rpcLimiter.StartPruning(limiterPruneInterval, s.stopPrune)

	// Create REST handler
	restHandler := rest.NewHandler(s.service, s.gateway)

	// Setup REST routes
	rest.SetupRoutes(router, restHandler,
		middleware.RateLimit(generalLimiter),
		middleware.RateLimit(rpcLimiter))

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	close(s.stopPrune)

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
