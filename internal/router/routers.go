package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/handler"
	"github.com/promptmaster/api/internal/middleware"
	"github.com/promptmaster/api/pkg/validation"
)

type Handlers struct {
	Auth       *handler.AuthHandler
	Course     *handler.CourseHandler
	Learning   *handler.LearningHandler
	User       *handler.UserHandler
	Assessment *handler.AssessmentHandler
	Health     *handler.HealthHandler
}

type Router struct {
	handlers Handlers

	authMw      *middleware.Authenticator
	authLimiter *middleware.FixedWindowLimiter
	apiLimiter  *middleware.FixedWindowLimiter
	Config      *config.Config
}

// NewRouter builds the route table. The limiters are owned by the caller so
// tests can drive them with their own clock.
func NewRouter(
	handlers Handlers,
	authMw *middleware.Authenticator,
	authLimiter *middleware.FixedWindowLimiter,
	apiLimiter *middleware.FixedWindowLimiter,
	config *config.Config,
) *Router {
	return &Router{
		handlers:    handlers,
		authMw:      authMw,
		authLimiter: authLimiter,
		apiLimiter:  apiLimiter,
		Config:      config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	// query binding shares the body validator and its custom tags
	binding.Validator = validation.GinValidator{}

	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestContextMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityLoggingMiddleware())
	router.Use(middleware.CORS(r.Config.CORS.AllowedOrigin))
	if r.Config.App.Timeout > 0 {
		router.Use(middleware.RequestTimeoutMiddleware(r.Config.App.Timeout))
	}

	api := router.Group("/api")
	{
		api.Use(middleware.RateLimit(r.apiLimiter))

		api.GET("/health", r.handlers.Health.HealthCheck)

		r.authRoutes(api)
		r.courseRoutes(api)
		r.learningRoutes(api)
		r.userRoutes(api)
		r.assessmentRoutes(api)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, constants.BuildErrorResponse(constants.MsgNotFound, c.Request.URL.Path))
	})

	return router
}
