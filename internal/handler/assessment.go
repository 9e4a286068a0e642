package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/internal/service"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

type AssessmentHandler struct {
	assessmentService *service.AssessmentService
}

func NewAssessmentHandler(assessmentService *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

func (h *AssessmentHandler) Create(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "CreateAssessment")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := requireBody[dto.CreateAssessmentRequest](c)
	if !ok {
		return
	}

	assessment, err := h.assessmentService.Create(ctx, *req, user)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		constants.ResponseFieldMessage: "Assessment created successfully",
		"assessment":                   assessment,
	})
}

// Get returns the assessment with answers and explanations stripped.
func (h *AssessmentHandler) Get(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GetAssessment")

	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	assessment, err := h.assessmentService.Get(ctx, id)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

func (h *AssessmentHandler) Submit(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "SubmitAssessment")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	req, ok := requireBody[dto.SubmitAssessmentRequest](c)
	if !ok {
		return
	}

	result, err := h.assessmentService.Submit(ctx, user, id, *req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "Assessment submitted").
		String("assessment_id", id.String()).
		Int("score", result.Score).
		Bool("passed", result.Passed).
		Log()

	c.JSON(http.StatusOK, result)
}
