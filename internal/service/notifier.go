package service

import (
	"bytes"
	"context"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/promptmaster/api/internal/model"
	"github.com/promptmaster/api/pkg/logger"
)

// ResetNotifier delivers a password reset token to its owner.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user *model.User, token string, expiresAt time.Time) error
}

const resetMessageTemplate = `Hi {{ .Name | trim | default "there" }},

Someone asked to reset the password for {{ .Email | lower }}.
Use this link within {{ .ValidFor }}: {{ .BaseURL | trimSuffix "/" }}/reset-password?token={{ .Token | urlquery }}

The link expires at {{ .ExpiresAt | date "2006-01-02 15:04 MST" }}.
If you did not request this, ignore this message.
`

type resetMessage struct {
	Name      string
	Email     string
	Token     string
	BaseURL   string
	ValidFor  string
	ExpiresAt time.Time
}

// LogNotifier renders the reset message and writes it to the log instead of
// sending mail. The token is not logged outside development.
type LogNotifier struct {
	baseURL     string
	development bool
	tmpl        *template.Template
	now         func() time.Time
}

func NewLogNotifier(baseURL string, development bool) *LogNotifier {
	tmpl := template.Must(template.New("reset").Funcs(sprig.TxtFuncMap()).Parse(resetMessageTemplate))
	return &LogNotifier{baseURL: baseURL, development: development, tmpl: tmpl, now: time.Now}
}

// Render produces the message body for a reset token.
func (n *LogNotifier) Render(user *model.User, token string, expiresAt time.Time) (string, error) {
	var buf bytes.Buffer
	err := n.tmpl.Execute(&buf, resetMessage{
		Name:      user.Name,
		Email:     user.Email,
		Token:     token,
		BaseURL:   n.baseURL,
		ValidFor:  expiresAt.Sub(n.now()).Round(time.Minute).String(),
		ExpiresAt: expiresAt.UTC(),
	})
	return buf.String(), err
}

func (n *LogNotifier) NotifyPasswordReset(ctx context.Context, user *model.User, token string, expiresAt time.Time) error {
	body, err := n.Render(user, token, expiresAt)
	if err != nil {
		return err
	}

	entry := logger.InfoWithContext(ctx, "Password reset requested").
		String("user_id", user.ID.String()).
		Time("expires_at", expiresAt)
	if n.development {
		entry = entry.String("message", body)
	}
	entry.Log()

	return nil
}
