// Package api wires the reconciliation services into the HTTP surface
// consumed by the dashboard.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ledgerlens/backend/internal/api/handlers"
	"github.com/ledgerlens/backend/internal/application/service"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the server with all routes registered.
func NewServer(cfg Config, recons *service.ReconcileService, uploads *service.UploadService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{config: cfg, router: router, logger: logger}
	s.setupRoutes(recons, uploads)
	return s
}

func (s *Server) setupRoutes(recons *service.ReconcileService, uploads *service.UploadService) {
	// No /api prefix: health and metrics are for load balancers and scrapers.
	s.router.GET("/health", handlers.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	uploadHandler := handlers.NewUploadHandler(uploads, s.logger)
	txHandler := handlers.NewTransactionsHandler(uploads, s.logger)
	reconcileHandler := handlers.NewReconcileHandler(recons, s.logger)

	api := s.router.Group("/api")
	{
		api.POST("/bank-transactions/upload", uploadHandler.Upload)
		api.GET("/bank-transactions", txHandler.ListBank)
		api.GET("/transactions", txHandler.ListLedger)
		api.POST("/transactions/deduplicate", reconcileHandler.Deduplicate)
		api.POST("/reconcile", reconcileHandler.Reconcile)
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
