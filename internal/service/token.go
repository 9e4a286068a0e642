package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/promptmaster/api/config"
	apperrors "github.com/promptmaster/api/internal/errors"
	"github.com/promptmaster/api/internal/model"
)

const refreshTokenType = "refresh"

// AccessClaims identify the caller on resource requests.
type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are only good for minting a new token pair.
type RefreshClaims struct {
	UserID    string `json:"userId"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// TokenService signs and verifies HS256 tokens. Access and refresh tokens
// carry different audiences so neither verifier accepts the other kind.
type TokenService struct {
	secret []byte
	cfg    config.JWTConfig
	now    func() time.Time
}

func NewTokenService(cfg config.JWTConfig, now func() time.Time) *TokenService {
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: []byte(cfg.Secret), cfg: cfg, now: now}
}

func (s *TokenService) AccessTTL() time.Duration { return s.cfg.AccessTTL }

func (s *TokenService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *TokenService) registered(subject, audience string, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    s.cfg.Issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	claims := AccessClaims{
		UserID:           user.ID.String(),
		Email:            user.Email,
		Role:             user.Role,
		RegisteredClaims: s.registered(user.ID.String(), s.cfg.AccessAudience, s.cfg.AccessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) IssueRefreshToken(user *model.User) (string, error) {
	claims := RefreshClaims{
		UserID:           user.ID.String(),
		TokenType:        refreshTokenType,
		RegisteredClaims: s.registered(user.ID.String(), s.cfg.RefreshAudience, s.cfg.RefreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssuePair mints a fresh access and refresh token for user.
func (s *TokenService) IssuePair(user *model.User) (*TokenPair, error) {
	access, err := s.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func (s *TokenService) parserOptions(audience string) []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	}
}

func (s *TokenService) keyFunc(*jwt.Token) (any, error) {
	return s.secret, nil
}

// VerifyAccessToken returns the claims of a valid access token. Failures map
// to ErrExpiredToken, ErrMalformedToken or ErrTokenVerificationFailed.
func (s *TokenService) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc, s.parserOptions(s.cfg.AccessAudience)...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.WrapError(apperrors.ErrExpiredToken, err)
		case errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, apperrors.WrapError(apperrors.ErrMalformedToken, err)
		default:
			return nil, apperrors.WrapError(apperrors.ErrTokenVerificationFailed, err)
		}
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrMalformedToken, err)
	}
	return claims, nil
}

// VerifyRefreshToken returns the user id carried by a valid refresh token.
// Every failure is ErrInvalidRefreshToken.
func (s *TokenService) VerifyRefreshToken(token string) (uuid.UUID, error) {
	claims := &RefreshClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc, s.parserOptions(s.cfg.RefreshAudience)...)
	if err != nil {
		return uuid.Nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}
	if claims.TokenType != refreshTokenType {
		return uuid.Nil, apperrors.ErrInvalidRefreshToken
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}
	return id, nil
}
