package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenUser() *model.User {
	u := model.NewUser("token@example.com", "Token", "irrelevant", constants.RoleInstructor)
	u.ID = uuid.New()
	return u
}

func TestTokenService_AccessRoundTrip(t *testing.T) {
	clock := testutil.NewClock(testStart)
	svc := NewTokenService(testJWTConfig(), clock.Now)
	user := tokenUser()

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, constants.RoleInstructor, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, testStart.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestTokenService_Expired(t *testing.T) {
	clock := testutil.NewClock(testStart)
	svc := NewTokenService(testJWTConfig(), clock.Now)

	token, err := svc.IssueAccessToken(tokenUser())
	require.NoError(t, err)

	clock.Advance(time.Hour + time.Second)
	_, err = svc.VerifyAccessToken(token)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	clock := testutil.NewClock(testStart)
	svc := NewTokenService(testJWTConfig(), clock.Now)
	user := tokenUser()

	other := testJWTConfig()
	other.Secret = "a-different-secret-entirely"
	forged, err := NewTokenService(other, clock.Now).IssueAccessToken(user)
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(forged)
	assert.ErrorIs(t, err, apperrors.ErrMalformedToken)

	_, err = svc.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, apperrors.ErrMalformedToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": user.ID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(unsigned)
	assert.Error(t, err)
}

func TestTokenService_AudiencesDoNotMix(t *testing.T) {
	clock := testutil.NewClock(testStart)
	svc := NewTokenService(testJWTConfig(), clock.Now)
	user := tokenUser()

	pair, err := svc.IssuePair(user)
	require.NoError(t, err)
	assert.Equal(t, 3600, pair.ExpiresIn)

	_, err = svc.VerifyAccessToken(pair.RefreshToken)
	assert.Error(t, err)

	_, err = svc.VerifyRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	id, err := svc.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}
