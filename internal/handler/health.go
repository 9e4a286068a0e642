package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/pkg/circuit"
	"github.com/promptmaster/api/pkg/database"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/promptmaster/api/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
	statusDisabled  = "disabled"
)

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	breaker     *circuit.Breaker
	version     string
	now         func() time.Time
}

type HealthCheckResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
	Breaker *circuit.Snapshot `json:"breaker,omitempty"`
}

// NewHealthHandler accepts a nil redis client when caching is disabled.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, breaker *circuit.Breaker, version string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		breaker:     breaker,
		version:     version,
		now:         time.Now,
	}
}

// HealthCheck reports database and redis status. Only the database decides
// the overall status; redis is optional.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthCheckResponse{
		Status:    statusHealthy,
		Version:   h.version,
		Timestamp: h.now().UTC(),
		Checks:    make(map[string]HealthCheck),
	}

	dbStatus := h.checkDatabase(ctx)
	response.Checks["database"] = dbStatus
	if dbStatus.Status != statusHealthy {
		response.Status = statusUnhealthy
	}

	response.Checks["redis"] = h.checkRedis(ctx)

	statusCode := http.StatusOK
	if response.Status == statusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	logger.GetLogger().Debug("Health check performed",
		zap.String("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) HealthCheck {
	if h.db == nil {
		return HealthCheck{Status: statusUnhealthy, Message: "Database connection not initialized"}
	}

	if err := database.Ping(ctx, h.db); err != nil {
		logger.GetLogger().Error("Database ping failed", zap.Error(err))
		return HealthCheck{Status: statusUnhealthy, Message: "Database ping failed"}
	}

	check := HealthCheck{Status: statusHealthy, Message: "Database connection is healthy"}
	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		check.Details = map[string]any{
			"open": stats.OpenConnections,
			"idle": stats.Idle,
		}
	}
	return check
}

func (h *HealthHandler) checkRedis(ctx context.Context) HealthCheck {
	if h.redisClient == nil {
		return HealthCheck{Status: statusDisabled, Message: "Redis cache is disabled"}
	}

	var snapshot *circuit.Snapshot
	if h.breaker != nil {
		s := h.breaker.Snapshot()
		snapshot = &s
	}

	if err := h.redisClient.Ping(ctx); err != nil {
		logger.GetLogger().Warn("Redis ping failed", zap.Error(err))
		return HealthCheck{
			Status:  statusUnhealthy,
			Message: "Redis ping failed, serving from database",
			Breaker: snapshot,
		}
	}

	return HealthCheck{
		Status:  statusHealthy,
		Message: "Redis connection is healthy",
		Details: h.redisClient.PoolStats(),
		Breaker: snapshot,
	}
}
