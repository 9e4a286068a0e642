package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/internal/middleware"
	"github.com/promptmaster/api/internal/service"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
	cookieMaxAge time.Duration
}

// NewAuthHandler sets the refresh cookie lifetime to the refresh token TTL.
// secureCookie should be true in production.
func NewAuthHandler(authService *service.AuthService, cookieMaxAge time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		cookieMaxAge: cookieMaxAge,
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     constants.RefreshCookieName,
		Value:    token,
		Path:     constants.RefreshCookiePath,
		MaxAge:   int(h.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     constants.RefreshCookieName,
		Value:    "",
		Path:     constants.RefreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) writeSession(c *gin.Context, status int, message string, result *dto.AuthResult) {
	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(status, dto.AuthResponse{
		Message:   message,
		User:      result.User,
		Token:     result.AccessToken,
		ExpiresIn: result.ExpiresIn,
	})
}

// Register creates an account. An authenticated admin may pick the role.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	req, ok := requireBody[dto.RegisterRequest](c)
	if !ok {
		return
	}
	caller, _ := middleware.CurrentUser(c)

	result, err := h.authService.Register(ctx, *req, caller)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	logger.InfoWithContext(ctx, "User registered successfully").
		String("user_id", result.User.ID.String()).
		Log()

	h.writeSession(c, http.StatusCreated, constants.MsgRegistered, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	req, ok := requireBody[dto.LoginRequest](c)
	if !ok {
		return
	}

	result, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(ctx, c, err)
		return
	}

	h.writeSession(c, http.StatusOK, constants.MsgLoggedIn, result)
}

// Refresh rotates the session from the refresh cookie. Any failure clears the cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Refresh")

	token, err := c.Cookie(constants.RefreshCookieName)
	if err != nil || token == "" {
		h.clearRefreshCookie(c)
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, "refresh token required"))
		return
	}

	result, err := h.authService.Refresh(ctx, token)
	if err != nil {
		h.clearRefreshCookie(c)
		respondError(ctx, c, err)
		return
	}

	h.writeSession(c, http.StatusOK, constants.MsgRefreshed, result)
}

// Logout only clears the cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgLoggedOut))
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ForgotPassword")

	req, ok := requireBody[dto.ForgotPasswordRequest](c)
	if !ok {
		return
	}

	if err := h.authService.ForgotPassword(ctx, req.Email); err != nil {
		logger.ErrorWithContext(ctx, "Password reset request failed").
			Err(err).
			Log()
	}

	// same answer whether or not the account exists
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgForgotPassword))
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ResetPassword")

	req, ok := requireBody[dto.ResetPasswordRequest](c)
	if !ok {
		return
	}

	if err := h.authService.ResetPassword(ctx, req.Token, req.Password); err != nil {
		respondError(ctx, c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgPasswordReset))
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": h.authService.Me(user)})
}
