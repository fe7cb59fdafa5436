package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/martijn/homedash/internal/api/docs"
	"github.com/martijn/homedash/internal/api/dto"
	"github.com/martijn/homedash/internal/api/handler"
	"github.com/martijn/homedash/internal/api/middleware"
	"github.com/martijn/homedash/internal/core/service"
	"github.com/martijn/homedash/internal/core/telemetry"
	"github.com/martijn/homedash/pkg/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the services the HTTP layer calls into.
type Dependencies struct {
	AuthService   *service.AuthService
	UserService   *service.UserService
	UploadService *service.UploadService
	Telemetry     *telemetry.Generator

	// SchemaVersion is reported by /health when set.
	SchemaVersion func(ctx context.Context) (int64, error)
}

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Server {
	// Set Gin mode
	if !cfg.IsDevMode() && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService, deps.UploadService, cfg.MaxUploadBytes)
	telemetryHandler := handler.NewTelemetryHandler(deps.Telemetry)

	// Public routes (no auth required)
	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)

	// Protected routes (auth required)
	authMiddleware := middleware.AuthMiddleware(deps.AuthService, logger)

	user := router.Group("/user")
	user.Use(authMiddleware)
	{
		user.GET("/profile", userHandler.Profile)
		user.PATCH("/settings/update", userHandler.UpdateSettings)
		user.POST("/avatar", userHandler.UploadAvatar)
		user.POST("/background", userHandler.UploadBackground)
	}

	router.GET("/metrics", authMiddleware, telemetryHandler.Metrics)
	router.GET("/dashboard-data", authMiddleware, telemetryHandler.Dashboard)
	router.POST("/devices/:id/toggle", authMiddleware, telemetryHandler.ToggleDevice)

	// Uploaded images
	uploads := router.Group("/uploads")
	uploads.Use(middleware.NoCache())
	{
		uploads.Static("/avatars", cfg.AvatarsDir)
		uploads.Static("/backgrounds", cfg.BackgroundsDir)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		resp := dto.HealthResponse{
			Status: "ok",
			Time:   time.Now().Format(time.RFC3339),
		}
		if deps.SchemaVersion != nil {
			version, err := deps.SchemaVersion(c.Request.Context())
			if err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable,
					dto.NewErrorResponse(http.StatusServiceUnavailable, "Database unavailable"))
				return
			}
			resp.SchemaVersion = version
		}
		c.JSON(http.StatusOK, resp)
	})

	return &Server{
		router: router,
		config: cfg,
		logger: logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.Addr()

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start with or without SSL
	if s.config.TLSEnabled() {
		s.logger.Info("starting HTTPS server", "addr", addr)
		return s.srv.ListenAndServeTLS(s.config.SSLCert, s.config.SSLKey)
	}

	s.logger.Info("starting HTTP server", "addr", addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
