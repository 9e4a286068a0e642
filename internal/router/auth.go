package router

import (
	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/internal/middleware"
)

func (r *Router) authRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		limited := auth.Group("")
		limited.Use(middleware.RateLimit(r.authLimiter))
		{
			// an authenticated admin may register accounts with any role
			limited.POST("/register",
				r.authMw.OptionalAuthenticate(),
				middleware.ValidateRequestBody[dto.RegisterRequest](),
				r.handlers.Auth.Register)
			limited.POST("/login", middleware.ValidateRequestBody[dto.LoginRequest](), r.handlers.Auth.Login)
			limited.POST("/refresh", r.handlers.Auth.Refresh)
			limited.POST("/forgot-password", middleware.ValidateRequestBody[dto.ForgotPasswordRequest](), r.handlers.Auth.ForgotPassword)
			limited.POST("/reset-password", middleware.ValidateRequestBody[dto.ResetPasswordRequest](), r.handlers.Auth.ResetPassword)
		}

		auth.POST("/logout", r.handlers.Auth.Logout)
		auth.GET("/me", r.authMw.Authenticate(), r.handlers.Auth.Me)
	}
}
