package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memora/config"
	"memora/internal/handler"
	"memora/internal/middleware"
	"memora/internal/redis"
	"memora/internal/services"
	"memora/internal/transport/httpdto"
	"memora/pkg/logger"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Prompts     *handler.PromptHandler
	Responses   *handler.ResponseHandler
	Communities *handler.CommunityHandler
	Reports     *handler.ReportHandler
	Health      *handler.HealthHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.AppPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router, mostly for httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// SetupRoutes registers the API. limiter may be nil when redis is disabled.
func (s *Server) SetupRoutes(handlers *Handlers, verifier services.IdentityVerifier, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.CORSOrigins))
	s.engine.Use(middleware.MetricsMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	s.engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", handlers.Health.Health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(verifier)
	optionalAuth := middleware.OptionalAuthMiddleware(verifier)

	api := s.engine.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimitMiddleware(limiter))
	}
	write := []gin.HandlerFunc{requireAuth}
	if limiter != nil {
		write = append(write, middleware.WriteRateLimitMiddleware(limiter))
	}
	authed := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), h)
	}

	prompts := api.Group("/prompts")
	{
		prompts.GET("", handlers.Prompts.List)
		prompts.GET("/:id", optionalAuth, handlers.Prompts.Get)
		prompts.POST("", authed(handlers.Prompts.Create)...)
		prompts.DELETE("/:id", authed(handlers.Prompts.Delete)...)
		prompts.POST("/:id/vote", authed(handlers.Prompts.Vote)...)
		prompts.DELETE("/:id/vote", authed(handlers.Prompts.RetractVote)...)
		prompts.POST("/:id/like", authed(handlers.Prompts.Like)...)
		prompts.GET("/:id/responses", optionalAuth, handlers.Responses.Thread)
	}

	responses := api.Group("/responses")
	{
		responses.POST("", authed(handlers.Responses.Create)...)
		responses.POST("/:id/upvote", authed(handlers.Responses.Upvote)...)
	}

	reports := api.Group("/reports")
	{
		reports.GET("", requireAuth, handlers.Reports.List)
		reports.POST("", authed(handlers.Reports.Create)...)
	}

	communities := api.Group("/communities")
	{
		communities.GET("", handlers.Communities.List)
		communities.GET("/:slug", handlers.Communities.Get)
		communities.GET("/:slug/prompts", handlers.Communities.Prompts)
		communities.POST("", authed(handlers.Communities.Create)...)
		communities.PATCH("/:slug", authed(handlers.Communities.Update)...)
	}
}

func (s *Server) Start() error {
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("Error in starting the server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	s.logger.Infof("Server is running on :%s", s.config.AppPort)

	<-quit

	s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		return err
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
