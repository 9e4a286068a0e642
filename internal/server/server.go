// Package server wires the stores, services and HTTP router into a runnable
// API server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/handler"
	"github.com/promptmaster/api/internal/middleware"
	"github.com/promptmaster/api/internal/repository"
	"github.com/promptmaster/api/internal/router"
	"github.com/promptmaster/api/internal/service"
	"github.com/promptmaster/api/pkg/circuit"
	"github.com/promptmaster/api/pkg/database"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/promptmaster/api/pkg/password"
	"github.com/promptmaster/api/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Version is reported by the health endpoint.
const Version = constants.AppVersion

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg        *config.Config
	db         *gorm.DB
	redis      *redis.Client
	httpServer *http.Server
}

// New connects to the database and, when enabled, redis, then builds the
// router. A redis connection failure only disables the course cache.
func New(cfg *config.Config) (*Server, error) {
	if cfg.JWT.AccessTTL > 24*time.Hour {
		logger.GetLogger().Warn("Access token lifetime exceeds 24h",
			zap.Duration("access_ttl", cfg.JWT.AccessTTL),
		)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.CloseDB(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	hasher, err := password.NewHasher(cfg.Security.HashAlgorithm, cfg.Security.BcryptCost)
	if err != nil {
		_ = database.CloseDB(db)
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg)
		if err != nil {
			logger.GetLogger().Warn("Redis unavailable, course cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	s := &Server{cfg: cfg, db: db, redis: redisClient}
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           s.buildRouter(hasher),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) buildRouter(hasher *password.Hasher) *gin.Engine {
	cfg := s.cfg

	// Repositories
	userRepo := repository.NewUserRepository(s.db, hasher)
	courseRepo := repository.NewCourseRepository(s.db)
	progressRepo := repository.NewProgressRepository(s.db)
	assessmentRepo := repository.NewAssessmentRepository(s.db)

	// Services
	var breaker *circuit.Breaker
	if s.redis != nil {
		breaker = circuit.NewBreaker("redis", circuit.DefaultConfig(), logger.GetLogger())
	}
	courseCache := service.NewCourseCache(s.redis, breaker, cfg.Redis.CacheTTL)

	tokenService := service.NewTokenService(cfg.JWT, time.Now)
	notifier := service.NewLogNotifier(cfg.CORS.AllowedOrigin, !cfg.IsProduction())
	authService := service.NewAuthService(userRepo, tokenService, hasher, notifier, cfg.Security, time.Now)
	courseService := service.NewCourseService(courseRepo, progressRepo, courseCache)
	learningService := service.NewLearningService(courseRepo, progressRepo, time.Now)
	userService := service.NewUserService(userRepo, progressRepo)
	assessmentService := service.NewAssessmentService(assessmentRepo, courseRepo, time.Now)

	// Handlers
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService, cfg.JWT.RefreshTTL, cfg.IsProduction()),
		Course:     handler.NewCourseHandler(courseService),
		Learning:   handler.NewLearningHandler(learningService),
		User:       handler.NewUserHandler(userService),
		Assessment: handler.NewAssessmentHandler(assessmentService),
		Health:     handler.NewHealthHandler(s.db, s.redis, breaker, Version),
	}

	return router.NewRouter(
		handlers,
		middleware.NewAuthenticator(tokenService, userRepo, time.Now),
		middleware.NewFixedWindowLimiter("auth", cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow, time.Now),
		middleware.NewFixedWindowLimiter("api", cfg.RateLimit.APIRequests, cfg.RateLimit.APIWindow, time.Now),
		cfg,
	).SetupRoutes()
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", s.cfg.App.Port),
			zap.String("environment", s.cfg.App.Environment),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	logger.GetLogger().Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.close()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.GetLogger().Info("Server stopped")
	return nil
}

func (s *Server) close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if err := database.CloseDB(s.db); err != nil {
		logger.GetLogger().Error("Failed to close database", zap.Error(err))
	}
}
