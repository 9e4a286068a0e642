package router

import (
	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/internal/middleware"
)

func (r *Router) userRoutes(api *gin.RouterGroup) {
	user := api.Group("/user")
	user.Use(r.authMw.Authenticate())
	{
		user.GET("/profile", r.handlers.User.Profile)
		user.PUT("/profile", middleware.ValidateRequestBody[dto.UpdateProfileRequest](), r.handlers.User.UpdateProfile)
		user.GET("/courses", r.handlers.User.Courses)
	}

	admin := api.Group("/admin")
	admin.Use(r.authMw.Authenticate(), middleware.RequireRole(constants.RoleAdmin))
	{
		admin.GET("/users", r.handlers.User.List)
	}
}
