package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/internal/middleware"
	"github.com/promptmaster/api/internal/service"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

type CourseHandler struct {
	courseService *service.CourseService
}

func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

// List returns one page of the published catalog.
func (h *CourseHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ListCourses")

	var query dto.CourseListQuery
	if !bindQuery(c, &query) {
		return
	}
	params := constants.ParsePaginationParams(c, constants.DefaultCourseLimit)

	logger.DebugWithContext(ctx, "List courses request").
		Int("page", params.Page).
		Int("limit", params.Limit).
		String("search", query.Search).
		Log()

	courses, total, err := h.courseService.List(ctx, query, params)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params, courses))
}

// Get returns a course; authenticated viewers also get their progress.
func (h *CourseHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetCourse")

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	viewer, _ := middleware.CurrentUser(c)

	course, err := h.courseService.Get(ctx, id, viewer)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

func (h *CourseHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CreateCourse")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := requireBody[dto.CreateCourseRequest](c)
	if !ok {
		return
	}

	course, err := h.courseService.Create(ctx, *req, user)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		constants.ResponseFieldMessage: "Course created successfully",
		"course":                       course,
	})
}

func (h *CourseHandler) Update(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateCourse")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	req, ok := requireBody[dto.UpdateCourseRequest](c)
	if !ok {
		return
	}

	course, err := h.courseService.Update(ctx, id, *req, user)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		constants.ResponseFieldMessage: "Course updated successfully",
		"course":                       course,
	})
}
