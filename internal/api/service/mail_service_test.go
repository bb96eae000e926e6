package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"firmdesk/internal/api/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mailServiceFor(settings SmtpSettings) *MailService {
	return &MailService{
		settings:    settings,
		logger:      zerolog.Nop(),
		dialTimeout: time.Second,
	}
}

func fullSettings() SmtpSettings {
	return SmtpSettings{
		Host:     "smtp.example.com",
		Port:     465,
		Username: "mailer@example.com",
		Password: "secret",
		From:     "noreply@example.com",
		FromName: "Acme Compliance",
		UseSSL:   true,
	}
}

func TestMissingSettings(t *testing.T) {
	assert.Empty(t, mailServiceFor(fullSettings()).MissingSettings())
	assert.True(t, mailServiceFor(fullSettings()).IsConfigured())

	svc := mailServiceFor(SmtpSettings{})
	missing := svc.MissingSettings()
	assert.ElementsMatch(t, []string{"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM"}, missing)
	assert.False(t, svc.IsConfigured())

	// Username doubles as the from address when SMTP_FROM is unset
	settings := fullSettings()
	settings.From = ""
	assert.Empty(t, mailServiceFor(settings).MissingSettings())
}

func TestSend_ShortCircuitsWhenNotConfigured(t *testing.T) {
	svc := mailServiceFor(SmtpSettings{Host: "smtp.example.com"})

	err := svc.Send(context.Background(), OutgoingMail{To: []string{"a@example.com"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSmtpNotConfigured)
}

func TestSend_RequiresRecipients(t *testing.T) {
	svc := mailServiceFor(fullSettings())

	err := svc.Send(context.Background(), OutgoingMail{Subject: "no recipients"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients")
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "dial tcp 10.0.0.1:465: connect timed out" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestIsConnectTimeout(t *testing.T) {
	assert.True(t, isConnectTimeout(timeoutNetError{}))
	assert.True(t, isConnectTimeout(context.DeadlineExceeded))
	assert.True(t, isConnectTimeout(errors.New("read tcp: i/o timeout")))
	assert.False(t, isConnectTimeout(errors.New("535 authentication failed")))
	assert.False(t, isConnectTimeout(errors.New("connection refused")))
}

func TestBuildMessage(t *testing.T) {
	svc := mailServiceFor(fullSettings())

	m, err := svc.buildMessage(OutgoingMail{
		To:      []string{"a@example.com"},
		Subject: "Hello",
		Body:    "<p>Hi</p>",
		IsHTML:  true,
	})

	require.NoError(t, err)
	sender, err := m.GetSender(true)
	require.NoError(t, err)
	assert.Contains(t, sender, "noreply@example.com")
	assert.Contains(t, sender, "Acme Compliance")

	recipients, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, recipients)
}

func TestBuildMessage_FallsBackToUsernameFrom(t *testing.T) {
	settings := fullSettings()
	settings.From = ""
	settings.FromName = ""
	svc := mailServiceFor(settings)

	m, err := svc.buildMessage(OutgoingMail{To: []string{"a@example.com"}, Subject: "Hello"})

	require.NoError(t, err)
	sender, err := m.GetSender(false)
	require.NoError(t, err)
	assert.Equal(t, "mailer@example.com", sender)
}

func TestForOrganizationSettings_Override(t *testing.T) {
	base := fullSettings()
	org := models.Organization{
		SmtpHost:     "smtp.client-firm.com",
		SmtpPort:     587,
		SmtpUsername: "firm@client-firm.com",
		SmtpPassword: "firm-secret",
		SmtpFrom:     "office@client-firm.com",
		SmtpUseSSL:   true,
	}

	resolved := resolveOrganizationSettings(base, org)

	assert.Equal(t, "smtp.client-firm.com", resolved.Host)
	assert.Equal(t, 587, resolved.Port)
	assert.Equal(t, "office@client-firm.com", resolved.From)
}

func TestForOrganizationSettings_FallsBackToApp(t *testing.T) {
	base := fullSettings()

	resolved := resolveOrganizationSettings(base, models.Organization{})

	assert.Equal(t, base, resolved, "an organization without its own SMTP host uses the application settings")
}
