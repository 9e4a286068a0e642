package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	result, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "New.User@Example.com",
		Password: "P@ssw0rd1",
		Name:     "  New <script>alert(1)</script>User ",
		Role:     constants.RoleAdmin,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "new.user@example.com", result.User.Email)
	assert.Equal(t, "New User", result.User.Name)
	assert.Equal(t, constants.RoleStudent, result.User.Role, "self-registration cannot pick a role")
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, int(time.Hour.Seconds()), result.ExpiresIn)

	stored, err := f.users.GetByEmail(ctx, "new.user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "P@ssw0rd1", stored.Password)
	assert.True(t, f.hasher.Verify("P@ssw0rd1", stored.Password))

	_, err = f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "new.user@EXAMPLE.com",
		Password: "P@ssw0rd1",
		Name:     "Again",
	}, nil)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
}

func TestAuthService_RegisterHashesDigestShapedPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	chosen, err := f.hasher.Hash("secret")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "shape@example.com",
		Password: chosen,
		Name:     "Shape",
	}, nil)
	require.NoError(t, err)

	stored, err := f.users.GetByEmail(ctx, "shape@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, chosen, stored.Password, "credential is stored as a digest of what the user typed")

	_, err = f.svc.Login(ctx, "shape@example.com", chosen)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "shape@example.com", "secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_RegisterRejectsOverlongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, dto.RegisterRequest{
		Email:    "long@example.com",
		Password: strings.Repeat("p", 100),
		Name:     "Long",
	}, nil)
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 400, apperrors.ToHTTPStatus(err))

	_, err = f.users.GetByEmail(ctx, "long@example.com")
	assert.Error(t, err, "no account is created")
}

func TestAuthService_RegisterByAdminKeepsRole(t *testing.T) {
	f := newAuthFixture(t)
	admin := testutil.CreateUser(t, f.db, f.hasher, "admin@example.com", "P@ssw0rd1", constants.RoleAdmin)

	result, err := f.svc.Register(context.Background(), dto.RegisterRequest{
		Email:    "author@example.com",
		Password: "P@ssw0rd1",
		Name:     "Author",
		Role:     constants.RoleInstructor,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleInstructor, result.User.Role)
}

func TestAuthService_LoginLockout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, f.db, f.hasher, "lock@example.com", "P@ssw0rd1", constants.RoleStudent)

	for i := 1; i <= 4; i++ {
		_, err := f.svc.Login(ctx, "lock@example.com", "wrong-password")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "attempt %d", i)
	}

	_, err := f.svc.Login(ctx, "lock@example.com", "wrong-password")
	require.ErrorIs(t, err, apperrors.ErrAccountLocked)

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Security.LoginAttempts)
	require.NotNil(t, stored.Security.LockUntil)
	lockUntil := testStart.Add(30 * time.Minute)
	assert.True(t, stored.Security.LockUntil.Equal(lockUntil), "locked until %v, want %v", stored.Security.LockUntil, lockUntil)

	f.clock.Advance(10 * time.Minute)
	_, err = f.svc.Login(ctx, "lock@example.com", "P@ssw0rd1")
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked, "correct password is refused while locked")
	_, err = f.svc.Login(ctx, "lock@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)

	stored, err = f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Security.LoginAttempts, "attempts while locked are not counted")
	require.NotNil(t, stored.Security.LockUntil)
	assert.True(t, stored.Security.LockUntil.Equal(lockUntil), "lock is not extended")
	assert.Nil(t, stored.Security.LastLogin)

	f.clock.Advance(21 * time.Minute)

	result, err := f.svc.Login(ctx, "lock@example.com", "P@ssw0rd1")
	require.NoError(t, err)

	stored, err = f.users.GetByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Security.LoginAttempts)
	assert.Nil(t, stored.Security.LockUntil)
	require.NotNil(t, stored.Security.LastLogin)
	assert.True(t, stored.Security.LastLogin.Equal(f.clock.Now()))
}

func TestAuthService_LoginSuccessResetsAttempts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, f.hasher, "reset@example.com", "P@ssw0rd1", constants.RoleStudent)

	for i := 0; i < 4; i++ {
		_, err := f.svc.Login(ctx, "reset@example.com", "nope")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
	_, err := f.svc.Login(ctx, "reset@example.com", "P@ssw0rd1")
	require.NoError(t, err)

	// a fresh count: four more failures still do not lock
	for i := 0; i < 4; i++ {
		_, err := f.svc.Login(ctx, "reset@example.com", "nope")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
}

func TestAuthService_LoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, f.hasher, "known@example.com", "P@ssw0rd1", constants.RoleStudent)

	_, unknownErr := f.svc.Login(ctx, "nobody@example.com", "P@ssw0rd1")
	_, wrongErr := f.svc.Login(ctx, "known@example.com", "bad")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, wrongErr.Error(), unknownErr.Error())
	assert.Equal(t, apperrors.ToHTTPStatus(wrongErr), apperrors.ToHTTPStatus(unknownErr))
}

func TestAuthService_Refresh(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, f.hasher, "refresh@example.com", "P@ssw0rd1", constants.RoleStudent)

	login, err := f.svc.Login(ctx, "refresh@example.com", "P@ssw0rd1")
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, rotated.User.ID)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	_, err = f.svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken, "access token is not a refresh token")

	_, err = f.svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	f.clock.Advance(31 * 24 * time.Hour)
	_, err = f.svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestAuthService_ForgotPasswordIsUniform(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, f.hasher, "forgot@example.com", "P@ssw0rd1", constants.RoleStudent)

	assert.NoError(t, f.svc.ForgotPassword(ctx, "nobody@example.com"))
	assert.Empty(t, f.notifier.last())

	assert.NoError(t, f.svc.ForgotPassword(ctx, "forgot@example.com"))
	token := f.notifier.last()
	assert.Len(t, token, 2*constants.ResetTokenBytes)
}

func TestAuthService_ResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, f.hasher, "rp@example.com", "P@ssw0rd1", constants.RoleStudent)

	// lock the account first; a reset lifts the lock
	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(ctx, "rp@example.com", "bad")
	}

	require.NoError(t, f.svc.ForgotPassword(ctx, "rp@example.com"))
	token := f.notifier.last()
	require.NotEmpty(t, token)

	require.NoError(t, f.svc.ResetPassword(ctx, token, "N3wP@ssword"))

	_, err := f.svc.Login(ctx, "rp@example.com", "N3wP@ssword")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "rp@example.com", "P@ssw0rd1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = f.svc.ResetPassword(ctx, token, "An0therP@ss")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredToken, "reset tokens are single use")
}

func TestAuthService_ResetPasswordRejectsOverlongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, f.hasher, "rp-long@example.com", "P@ssw0rd1", constants.RoleStudent)

	require.NoError(t, f.svc.ForgotPassword(ctx, "rp-long@example.com"))
	token := f.notifier.last()

	err := f.svc.ResetPassword(ctx, token, strings.Repeat("p", 73))
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, 400, apperrors.ToHTTPStatus(err))

	require.NoError(t, f.svc.ResetPassword(ctx, token, "N3wP@ssword"), "a rejected password does not consume the token")
}

func TestAuthService_ResetPasswordExpired(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, f.hasher, "late@example.com", "P@ssw0rd1", constants.RoleStudent)

	require.NoError(t, f.svc.ForgotPassword(ctx, "late@example.com"))
	token := f.notifier.last()

	f.clock.Advance(time.Hour + time.Second)
	err := f.svc.ResetPassword(ctx, token, "N3wP@ssword")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidOrExpiredToken))

	_, err = f.svc.Login(ctx, "late@example.com", "P@ssw0rd1")
	assert.NoError(t, err)
}
