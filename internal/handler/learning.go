package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/service"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

type LearningHandler struct {
	learningService *service.LearningService
}

func NewLearningHandler(learningService *service.LearningService) *LearningHandler {
	return &LearningHandler{learningService: learningService}
}

func (h *LearningHandler) Enroll(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Enroll")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := requireBody[dto.EnrollRequest](c)
	if !ok {
		return
	}

	// the body validator has already checked the uuid format
	h.enroll(ctx, c, user, uuid.MustParse(req.CourseID))
}

// EnrollCourse is Enroll with the course taken from the path.
func (h *LearningHandler) EnrollCourse(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "EnrollCourse")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	h.enroll(ctx, c, user, courseID)
}

func (h *LearningHandler) enroll(ctx context.Context, c *gin.Context, user *model.User, courseID uuid.UUID) {
	progress, err := h.learningService.Enroll(ctx, user, courseID)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "Enrollment created").
		String("course_id", courseID.String()).
		Log()

	c.JSON(http.StatusCreated, gin.H{
		constants.ResponseFieldMessage: "Successfully enrolled in course",
		"progress":                     progress,
	})
}

// ListProgress returns the caller's progress, optionally for a single course.
func (h *LearningHandler) ListProgress(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ListProgress")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	var query dto.ProgressQuery
	if !bindQuery(c, &query) {
		return
	}

	var courseID *uuid.UUID
	if query.CourseID != "" {
		id := uuid.MustParse(query.CourseID)
		courseID = &id
	}

	progress, err := h.learningService.ListProgress(ctx, user, courseID)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (h *LearningHandler) UpdateProgress(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateProgress")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := requireBody[dto.UpdateProgressRequest](c)
	if !ok {
		return
	}

	result, err := h.learningService.UpdateProgress(ctx, user, *req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
