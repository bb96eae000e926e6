package service

import (
	"context"
	"errors"
	"firmdesk"
	"firmdesk/internal/api/models"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
)

// OutgoingMail is a fully rendered message ready for SMTP delivery.
type OutgoingMail struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	IsHTML  bool     `json:"isHtml"`
}

// Transport delivers a rendered message. MailService is the SMTP
// implementation; tests substitute fakes.
type Transport interface {
	Send(ctx context.Context, msg OutgoingMail) error
}

// SmtpSettings is the resolved SMTP configuration for one send.
type SmtpSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
}

// ErrSmtpNotConfigured short-circuits sends before any dial happens.
var ErrSmtpNotConfigured = errors.New("SMTP not configured")

type MailService struct {
	settings SmtpSettings
	logger   zerolog.Logger

	dialTimeout time.Duration
}

// NewMailService builds a transport from the application-level SMTP
// settings in .env.
func NewMailService() *MailService {
	cfg := firmdesk.GetConfig().SmtpConfig
	return NewMailServiceWithSettings(SmtpSettings{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
		UseSSL:   cfg.UseSSL,
	})
}

func NewMailServiceWithSettings(settings SmtpSettings) *MailService {
	return &MailService{
		settings:    settings,
		logger:      firmdesk.Logger,
		dialTimeout: 15 * time.Second,
	}
}

// ForOrganization resolves an organization's SMTP override, falling
// back to the application settings when the organization has none.
func ForOrganization(org models.Organization) *MailService {
	base := firmdesk.GetConfig().SmtpConfig
	settings := resolveOrganizationSettings(SmtpSettings{
		Host:     base.Host,
		Port:     base.Port,
		Username: base.Username,
		Password: base.Password,
		From:     base.From,
		FromName: base.FromName,
		UseSSL:   base.UseSSL,
	}, org)
	return NewMailServiceWithSettings(settings)
}

func resolveOrganizationSettings(base SmtpSettings, org models.Organization) SmtpSettings {
	if org.SmtpHost == "" {
		return base
	}
	return SmtpSettings{
		Host:     org.SmtpHost,
		Port:     org.SmtpPort,
		Username: org.SmtpUsername,
		Password: org.SmtpPassword,
		From:     org.SmtpFrom,
		FromName: org.SmtpFromName,
		UseSSL:   org.SmtpUseSSL,
	}
}

// IsConfigured reports whether enough settings are present to dial.
func (slf *MailService) IsConfigured() bool {
	return len(slf.MissingSettings()) == 0
}

// MissingSettings names the settings that still need to be filled in.
func (slf *MailService) MissingSettings() []string {
	var missing []string
	if slf.settings.Host == "" {
		missing = append(missing, "SMTP_HOST")
	}
	if slf.settings.Port == 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if slf.settings.Username == "" {
		missing = append(missing, "SMTP_USERNAME")
	}
	if slf.settings.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if slf.settings.From == "" && slf.settings.Username == "" {
		missing = append(missing, "SMTP_FROM")
	}
	return missing
}

// Send delivers one message. Port 465 uses implicit TLS; when the 465
// connection times out the send is repeated once against 587 with
// mandatory STARTTLS. The stored settings are left untouched.
func (slf *MailService) Send(ctx context.Context, msg OutgoingMail) error {
	if !slf.IsConfigured() {
		return ErrSmtpNotConfigured
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m, err := slf.buildMessage(msg)
	if err != nil {
		return err
	}

	err = slf.dialAndSend(ctx, slf.settings, m)
	if err != nil && slf.settings.Port == 465 && isConnectTimeout(err) {
		slf.logger.Warn().
			Str("host", slf.settings.Host).
			Msg("SSL port timed out, falling back to 587 STARTTLS")
		fallback := slf.settings
		fallback.Port = 587
		fallback.UseSSL = true
		err = slf.dialAndSend(ctx, fallback, m)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slf.logger.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("Email sent")
	return nil
}

// TestConnection dials the SMTP server and closes the session without
// sending anything.
func (slf *MailService) TestConnection(ctx context.Context) error {
	if !slf.IsConfigured() {
		return ErrSmtpNotConfigured
	}

	client, err := slf.newClient(slf.settings)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, slf.dialTimeout)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		return fmt.Errorf("SMTP connection failed: %w", err)
	}
	_ = client.Close()

	return nil
}

func (slf *MailService) buildMessage(msg OutgoingMail) (*gomail.Msg, error) {
	from := slf.settings.From
	if from == "" {
		from = slf.settings.Username
	}

	m := gomail.NewMsg()
	if slf.settings.FromName != "" {
		if err := m.FromFormat(slf.settings.FromName, from); err != nil {
			return nil, fmt.Errorf("failed to set from: %w", err)
		}
	} else {
		if err := m.From(from); err != nil {
			return nil, fmt.Errorf("failed to set from: %w", err)
		}
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("failed to set to: %w", err)
	}

	m.Subject(msg.Subject)
	if msg.IsHTML {
		m.SetBodyString(gomail.TypeTextHTML, msg.Body)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	}
	return m, nil
}

func (slf *MailService) newClient(settings SmtpSettings) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(settings.Port),
		gomail.WithTimeout(slf.dialTimeout),
	}

	if settings.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else if settings.UseSSL {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	if settings.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(settings.Username),
			gomail.WithPassword(settings.Password),
		)
	}

	return gomail.NewClient(settings.Host, opts...)
}

func (slf *MailService) dialAndSend(ctx context.Context, settings SmtpSettings, m *gomail.Msg) error {
	client, err := slf.newClient(settings)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}

// isConnectTimeout matches the errors a blocked or filtered SSL port
// produces, the usual reason port 465 is unreachable.
func isConnectTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "i/o timeout")
}
