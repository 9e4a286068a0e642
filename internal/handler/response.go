package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/middleware"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/promptmaster/api/pkg/validation"
)

// respondError maps err to its status and a client safe body. Internal
// details are logged, never returned.
func respondError(ctx context.Context, c *gin.Context, err error) {
	status := apperrors.ToHTTPStatus(err)

	entry := logger.WarnWithContext(ctx, "Request failed")
	if status >= http.StatusInternalServerError {
		entry = logger.ErrorWithContext(ctx, "Request failed")
	}
	entry.
		StatusCode(status).
		String("code", apperrors.GetErrorCode(err)).
		Err(err).
		Log()

	c.JSON(status, constants.BuildCodedErrorResponse(
		apperrors.GetErrorCode(err),
		apperrors.GetErrorMessage(err),
		nil,
	))
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*model.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, apperrors.ErrUnauthorized.Message))
		return nil, false
	}
	return user, true
}

// requireBody returns the body validated by the route's middleware.
func requireBody[T any](c *gin.Context) (*T, bool) {
	req, ok := middleware.Body[T](c)
	if !ok {
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgBadRequest, nil))
		return nil, false
	}
	return req, true
}

func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		details := validation.Messages(err)
		if details == nil {
			details = []string{err.Error()}
		}
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgValidationFailed, details))
		return false
	}
	return true
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, constants.BuildCodedErrorResponse(
			apperrors.ErrValidation.Code, name+" must be a valid UUID", nil))
		return uuid.Nil, false
	}
	return id, true
}
