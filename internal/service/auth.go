package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/promptmaster/api/pkg/password"
	"go.uber.org/zap"
)

type authUserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByResetToken(ctx context.Context, token string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	UpdateLoginState(ctx context.Context, user *model.User) error
}

type credentialVerifier interface {
	Verify(plain, digest string) bool
	VerifyDummy(plain string)
}

type AuthService struct {
	users    authUserStore
	tokens   *TokenService
	verifier credentialVerifier
	notifier ResetNotifier
	security config.SecurityConfig
	now      func() time.Time
}

func NewAuthService(
	users authUserStore,
	tokens *TokenService,
	verifier credentialVerifier,
	notifier ResetNotifier,
	security config.SecurityConfig,
	now func() time.Time,
) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		notifier: notifier,
		security: security,
		now:      now,
	}
}

// Register creates a student account, or an account with the requested role
// when the caller is an admin, and signs the new user in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest, caller *model.User) (*dto.AuthResult, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Register")

	if err := checkPasswordLength(req.Password); err != nil {
		return nil, err
	}

	role := constants.RoleStudent
	if req.Role != "" && caller != nil && caller.HasRole(constants.RoleAdmin) {
		role = req.Role
	}

	logger.InfoWithContext(ctx, "Registering user").
		String("email", model.NormalizeEmail(req.Email)).
		String("role", role).
		Log()

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		logger.WarnWithContext(ctx, "Registration rejected: email already registered").
			String("email", model.NormalizeEmail(req.Email)).
			Log()
		return nil, apperrors.ErrDuplicateEmail
	} else if !repository.IsNotFound(err) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := model.NewUser(req.Email, sanitizeText(req.Name), req.Password, role)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateEmail
		}
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	logger.LogAuth(user.ID.String(), "register", true, zap.String("role", user.Role))
	return result, nil
}

// Login checks credentials under the lockout policy. An unknown email and a
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.AuthResult, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Login")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			s.verifier.VerifyDummy(password)
			logger.LogAuth("", "login", false, zap.String("reason", "unknown_email"))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	now := s.now()
	if user.IsLocked(now) {
		logger.LogAuth(user.ID.String(), "login", false,
			zap.String("reason", "locked"),
			zap.Timep("lock_until", user.Security.LockUntil),
		)
		return nil, apperrors.ErrAccountLocked
	}

	if !s.verifier.Verify(password, user.Password) {
		locked := user.RegisterFailedLogin(now, s.security.MaxLoginAttempts, s.security.LockoutDuration)
		if err := s.users.UpdateLoginState(ctx, user); err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}

		logger.LogAuth(user.ID.String(), "login", false,
			zap.String("reason", "bad_password"),
			zap.Int("login_attempts", user.Security.LoginAttempts),
			zap.Bool("locked", locked),
		)
		if locked {
			return nil, apperrors.ErrAccountLocked
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	user.RegisterSuccessfulLogin(now)
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	logger.LogAuth(user.ID.String(), "login", true)
	return result, nil
}

// Refresh rotates a token pair. The old refresh token stays valid until it
// expires since nothing records issued tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResult, error) {
	ctx = ctxutil.WithFunction(ctx, "service", "Refresh")

	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh token rejected").
			Err(err).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	logger.LogAuth(user.ID.String(), "refresh", true)
	return result, nil
}

// ForgotPassword stores a one hour reset token for a known email and hands
// it to the notifier. The caller sees the same outcome either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	ctx = ctxutil.WithFunction(ctx, "service", "ForgotPassword")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			logger.DebugWithContext(ctx, "Password reset for unknown email ignored").Log()
			return nil
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := newResetToken()
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	expiresAt := s.now().Add(s.security.ResetTokenTTL)
	user.SetPasswordReset(token, expiresAt)
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.notifier.NotifyPasswordReset(ctx, user, token, expiresAt); err != nil {
		logger.ErrorWithContext(ctx, "Failed to deliver password reset").
			String("user_id", user.ID.String()).
			Err(err).
			Log()
	}

	return nil
}

// ResetPassword consumes a reset token, sets the new password and lifts any lockout.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx = ctxutil.WithFunction(ctx, "service", "ResetPassword")

	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if repository.IsNotFound(err) {
			return apperrors.ErrInvalidOrExpiredToken
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	reset, ok := user.ActivePasswordReset(s.now())
	if !ok || subtle.ConstantTimeCompare([]byte(reset.Token), []byte(token)) != 1 {
		logger.WarnWithContext(ctx, "Expired password reset token used").
			String("user_id", user.ID.String()).
			Log()
		return apperrors.ErrInvalidOrExpiredToken
	}

	user.SetPassword(newPassword)
	user.ClearPasswordReset()
	user.ClearLockout()
	if err := s.users.Save(ctx, user); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.LogAuth(user.ID.String(), "reset_password", true)
	return nil
}

// checkPasswordLength rejects credentials the hasher cannot accept before any state changes.
func checkPasswordLength(plain string) error {
	if len(plain) > password.MaxBytes {
		return apperrors.WithMessage(apperrors.ErrValidation, "password must be at most 72 bytes")
	}
	return nil
}

func (s *AuthService) Me(user *model.User) dto.UserResponse {
	return dto.NewUserResponse(user)
}

func (s *AuthService) issue(user *model.User) (*dto.AuthResult, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return &dto.AuthResult{
		User:         dto.NewUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func newResetToken() (string, error) {
	buf := make([]byte, constants.ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
