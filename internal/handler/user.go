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

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Profile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": h.userService.Profile(user)})
}

// UpdateProfile applies the allowed profile fields; anything else in the body is ignored.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UpdateProfile")

	user, ok := requireUser(c)
	if !ok {
		return
	}
	req, ok := requireBody[dto.UpdateProfileRequest](c)
	if !ok {
		return
	}

	updated, err := h.userService.UpdateProfile(ctx, user, *req)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "Profile updated").
		String("user_id", user.ID.String()).
		Log()

	c.JSON(http.StatusOK, gin.H{
		constants.ResponseFieldMessage: "Profile updated successfully",
		"user":                         updated,
	})
}

func (h *UserHandler) Courses(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "UserCourses")

	user, ok := requireUser(c)
	if !ok {
		return
	}

	courses, err := h.userService.Courses(ctx, user)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// List is the admin user listing.
func (h *UserHandler) List(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ListUsers")

	var query dto.UserListQuery
	if !bindQuery(c, &query) {
		return
	}
	params := constants.ParsePaginationParams(c, constants.DefaultLimit)

	users, total, err := h.userService.List(ctx, query, params)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildListResponse(total, params, users))
}
