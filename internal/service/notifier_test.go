package service

import (
	"context"
	"testing"
	"time"

	"github.com/promptmaster/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_Render(t *testing.T) {
	n := NewLogNotifier("https://promptmaster.test/", false)
	n.now = func() time.Time { return testStart }

	user := model.NewUser("Reader@Example.com", "Reader", "x", "")
	body, err := n.Render(user, "abc123", testStart.Add(time.Hour))
	require.NoError(t, err)

	assert.Contains(t, body, "Hi Reader,")
	assert.Contains(t, body, "reader@example.com")
	assert.Contains(t, body, "https://promptmaster.test/reset-password?token=abc123")
	assert.Contains(t, body, "within 1h0m0s")
	assert.Contains(t, body, "2025-03-01 10:00 UTC")

	assert.NoError(t, n.NotifyPasswordReset(context.Background(), user, "abc123", testStart.Add(time.Hour)))
}

func TestLogNotifier_RenderWithoutName(t *testing.T) {
	n := NewLogNotifier("https://promptmaster.test", true)
	user := model.NewUser("anon@example.com", "  ", "x", "")

	body, err := n.Render(user, "tok", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Contains(t, body, "Hi there,")
}
