package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/promptmaster/api/config"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/internal/repository"
	"github.com/promptmaster/api/internal/testutil"
	"github.com/promptmaster/api/pkg/password"
	"gorm.io/gorm"
)

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:          "test-secret-0123456789abcdef",
		Issuer:          "promptmaster-test",
		AccessAudience:  "promptmaster-api",
		RefreshAudience: "promptmaster-refresh",
		AccessTTL:       time.Hour,
		RefreshTTL:      30 * 24 * time.Hour,
	}
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		HashAlgorithm:    password.AlgorithmBcrypt,
		MaxLoginAttempts: 5,
		LockoutDuration:  30 * time.Minute,
		ResetTokenTTL:    time.Hour,
	}
}

// captureNotifier keeps the last reset token instead of delivering it.
type captureNotifier struct {
	mu     sync.Mutex
	tokens []string
}

func (n *captureNotifier) NotifyPasswordReset(_ context.Context, _ *model.User, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, token)
	return nil
}

func (n *captureNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.tokens) == 0 {
		return ""
	}
	return n.tokens[len(n.tokens)-1]
}

type authFixture struct {
	db       *gorm.DB
	hasher   *password.Hasher
	users    *repository.UserRepository
	tokens   *TokenService
	notifier *captureNotifier
	clock    *testutil.Clock
	svc      *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		db:       testutil.NewTestDB(t),
		hasher:   testutil.NewHasher(t),
		notifier: &captureNotifier{},
		clock:    testutil.NewClock(testStart),
	}
	f.users = repository.NewUserRepository(f.db, f.hasher)
	f.tokens = NewTokenService(testJWTConfig(), f.clock.Now)
	f.svc = NewAuthService(f.users, f.tokens, f.hasher, f.notifier, testSecurityConfig(), f.clock.Now)
	return f
}
