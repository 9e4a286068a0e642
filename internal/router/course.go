package router

import (
	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/internal/middleware"
)

func (r *Router) courseRoutes(api *gin.RouterGroup) {
	courses := api.Group("/courses")
	{
		courses.GET("", r.authMw.OptionalAuthenticate(), r.handlers.Course.List)
		courses.GET("/:id", r.authMw.OptionalAuthenticate(), r.handlers.Course.Get)
		courses.POST("/:id/enroll", r.authMw.Authenticate(), r.handlers.Learning.EnrollCourse)

		authoring := courses.Group("")
		authoring.Use(r.authMw.Authenticate(), middleware.RequireRole(constants.RoleInstructor, constants.RoleAdmin))
		{
			authoring.POST("", middleware.ValidateRequestBody[dto.CreateCourseRequest](), r.handlers.Course.Create)
			authoring.PUT("/:id", middleware.ValidateRequestBody[dto.UpdateCourseRequest](), r.handlers.Course.Update)
		}
	}
}

func (r *Router) learningRoutes(api *gin.RouterGroup) {
	learner := api.Group("")
	learner.Use(r.authMw.Authenticate())
	{
		learner.POST("/enroll", middleware.ValidateRequestBody[dto.EnrollRequest](), r.handlers.Learning.Enroll)
		learner.GET("/progress", r.handlers.Learning.ListProgress)
		learner.POST("/progress", middleware.ValidateRequestBody[dto.UpdateProgressRequest](), r.handlers.Learning.UpdateProgress)
	}
}

func (r *Router) assessmentRoutes(api *gin.RouterGroup) {
	assessments := api.Group("/assessments")
	assessments.Use(r.authMw.Authenticate())
	{
		assessments.POST("",
			middleware.RequireRole(constants.RoleInstructor, constants.RoleAdmin),
			middleware.ValidateRequestBody[dto.CreateAssessmentRequest](),
			r.handlers.Assessment.Create)
		assessments.GET("/:id", r.handlers.Assessment.Get)
		assessments.POST("/:id/submit", middleware.ValidateRequestBody[dto.SubmitAssessmentRequest](), r.handlers.Assessment.Submit)
	}
}
