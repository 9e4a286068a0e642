package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	"github.com/promptmaster/api/internal/service"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
	"go.uber.org/zap"
)

type userLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Authenticator resolves bearer tokens to users.
type Authenticator struct {
	tokens *service.TokenService
	users  userLoader
	now    func() time.Time
}

func NewAuthenticator(tokens *service.TokenService, users userLoader, now func() time.Time) *Authenticator {
	if now == nil {
		now = time.Now
	}
	return &Authenticator{tokens: tokens, users: users, now: now}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(constants.HeaderAuthorization)
	if !strings.HasPrefix(header, constants.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
	return token, token != ""
}

// resolve returns the user behind the request's bearer token. A failing
// user lookup is an ErrInternal, not a rejected credential.
func (a *Authenticator) resolve(c *gin.Context) (*model.User, error) {
	token, ok := bearerToken(c)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}

	claims, err := a.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.ErrMalformedToken
	}

	user, err := a.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.WithMessage(apperrors.ErrUnauthorized, "user no longer exists")
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user.IsLocked(a.now()) {
		return nil, apperrors.ErrAccountLocked
	}
	return user, nil
}

func setUser(c *gin.Context, user *model.User) {
	c.Request = c.Request.WithContext(ctxutil.WithAuthUser(c.Request.Context(), user))
	c.Set(constants.GinKeyUser, user)
	c.Set(constants.GinKeyUserID, user.ID.String())
	c.Set(constants.GinKeyRole, user.Role)
}

// Authenticate rejects requests without a valid access token.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.resolve(c)
		if errors.Is(err, apperrors.ErrInternal) {
			logger.ErrorWithContext(c.Request.Context(), "Failed to load authenticated user").
				String("path", c.Request.URL.Path).
				Err(err).
				Log()
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				constants.BuildErrorResponse(constants.MsgInternalError, apperrors.GetErrorMessage(err)))
			return
		}
		if err != nil {
			logger.GetLogger().Warn("Authentication rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
				zap.String("client_ip", c.ClientIP()),
				zap.String("code", apperrors.GetErrorCode(err)),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				constants.BuildErrorResponse(constants.MsgUnauthorized, apperrors.GetErrorMessage(err)))
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthenticate attaches the user when a valid token is present and
// otherwise lets the request through anonymously.
func (a *Authenticator) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := bearerToken(c); ok {
			if user, err := a.resolve(c); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				constants.BuildErrorResponse(constants.MsgUnauthorized, apperrors.ErrUnauthorized.Message))
			return
		}
		if !user.HasRole(roles...) {
			logger.GetLogger().Warn("Insufficient permissions",
				zap.String("user_id", user.ID.String()),
				zap.String("role", user.Role),
				zap.Strings("required", roles),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden,
				constants.BuildErrorResponse(constants.MsgForbidden, apperrors.ErrInsufficientPermissions.Message))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Authenticate or OptionalAuthenticate.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	if v, ok := c.Get(constants.GinKeyUser); ok {
		if user, ok := v.(*model.User); ok && user != nil {
			return user, true
		}
	}
	return ctxutil.AuthUser(c.Request.Context())
}
