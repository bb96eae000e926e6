package service

import (
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/pkg"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PasswordUnavailable is substituted for login_password when the
// stored credential cannot be decrypted.
const PasswordUnavailable = "[Password not available. Please use password reset or contact administrator.]"

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

var htmlTagPattern = regexp.MustCompile(`(?i)<[a-z][\s\S]*>`)

// RenderTemplate substitutes {{name}} placeholders from vars. Unknown
// placeholders resolve to the empty string; values are inserted
// literally, never re-expanded.
func RenderTemplate(body string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return vars[name]
	})
}

// ContainsHTMLTag reports whether a rendered body already carries HTML
// markup and should be sent through without escaping.
func ContainsHTMLTag(body string) bool {
	return htmlTagPattern.MatchString(body)
}

// PlainTextToHTML escapes a plain-text body and converts its blank-line
// separated paragraphs into <p> blocks, single newlines into <br>.
func PlainTextToHTML(body string) string {
	escaped := html.EscapeString(body)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")

	var b strings.Builder
	for _, paragraph := range strings.Split(escaped, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(paragraph, "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

// WrapInLayout puts rendered content into the branded HTML envelope:
// header with the organization name, content area, contact footer.
func WrapInLayout(orgName string, orgContact string, content string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"></head>")
	b.WriteString("<body style=\"margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,Helvetica,sans-serif;\">")
	b.WriteString("<div style=\"max-width:600px;margin:0 auto;background-color:#ffffff;\">")
	b.WriteString("<div style=\"background-color:#1a4f8b;color:#ffffff;padding:24px;text-align:center;\">")
	b.WriteString("<h1 style=\"margin:0;font-size:22px;\">")
	b.WriteString(html.EscapeString(orgName))
	b.WriteString("</h1></div>")
	b.WriteString("<div style=\"padding:24px;color:#333333;font-size:14px;line-height:1.6;\">")
	b.WriteString(content)
	b.WriteString("</div>")
	b.WriteString("<div style=\"padding:16px 24px;background-color:#f0f0f0;color:#777777;font-size:12px;text-align:center;\">")
	if orgContact != "" {
		b.WriteString("<p style=\"margin:0 0 6px 0;\">")
		b.WriteString(html.EscapeString(orgContact))
		b.WriteString("</p>")
	}
	b.WriteString("<p style=\"margin:0;\">This is an automated message. Please do not reply to this email.</p>")
	b.WriteString("</div></div></body></html>")
	return b.String()
}

// TemplateRenderService turns a template plus its surrounding entities
// into a ready-to-send subject and HTML body.
type TemplateRenderService struct {
	logger       zerolog.Logger
	cryptoSecret string
	frontendURL  string
}

func NewTemplateRenderService() *TemplateRenderService {
	cfg := firmdesk.GetConfig()
	return &TemplateRenderService{
		logger:       firmdesk.Logger,
		cryptoSecret: cfg.CryptoConfig.Secret,
		frontendURL:  cfg.FrontendURL,
	}
}

// RenderVars carries the optional row-level values merged into the
// variable map on top of the entity-derived ones.
type RenderVars struct {
	ScheduledDate   time.Time
	DeadlineDate    *time.Time
	FollowUpDate    *time.Time
	Amount          string
	DocumentName    string
	AdditionalNotes string
}

// BuildVariables assembles the substitution map for one send. The user
// may be nil when the client has no portal account.
func (slf *TemplateRenderService) BuildVariables(
	client models.Client,
	org models.Organization,
	user *models.User,
	tmpl models.EmailTemplate,
	extra RenderVars,
) map[string]string {
	now := time.Now()
	scheduledDate := extra.ScheduledDate
	if scheduledDate.IsZero() {
		scheduledDate = now
	}
	deadline := scheduledDate
	if extra.DeadlineDate != nil {
		deadline = *extra.DeadlineDate
	}

	vars := map[string]string{
		"client_name":         client.Name,
		"company_name":        client.CompanyName,
		"client_email":        client.Email,
		"client_phone":        client.Phone,
		"org_name":            org.Name,
		"org_email":           org.Email,
		"org_phone":           org.Phone,
		"org_city":            org.City,
		"org_state":           org.State,
		"org_country":         org.Country,
		"org_pincode":         org.Pincode,
		"service_name":        tmpl.Name,
		"service_description": tmpl.Description,
		"current_date":        now.Format("2006-01-02"),
		"current_datetime":    now.Format("2006-01-02 15:04"),
		"scheduled_date":      scheduledDate.Format("2006-01-02"),
		"deadline_date":       deadline.Format("2006-01-02"),
		"amount":              extra.Amount,
		"document_name":       extra.DocumentName,
		"additional_notes":    extra.AdditionalNotes,
	}

	if extra.FollowUpDate != nil {
		vars["follow_up_date"] = extra.FollowUpDate.Format("2006-01-02")
	} else {
		vars["follow_up_date"] = ""
	}

	// The linked portal account's email wins over the client contact
	vars["login_email"] = client.Email
	if user != nil && user.Email != "" {
		vars["login_email"] = user.Email
	}
	vars["login_password"] = slf.loginPassword(user)
	vars["login_url"] = slf.loginURL(org)

	return vars
}

// RenderEmail produces the final subject and enveloped HTML body. The
// rendered body is inspected for markup: anything carrying an HTML tag
// passes through as-is, everything else is escaped and paragraphed.
func (slf *TemplateRenderService) RenderEmail(tmpl models.EmailTemplate, org models.Organization, vars map[string]string) (string, string) {
	subject := RenderTemplate(tmpl.Subject, vars)
	body := RenderTemplate(tmpl.Body, vars)

	if tmpl.BodyFormat != models.BodyFormatHTML && !ContainsHTMLTag(body) {
		body = PlainTextToHTML(body)
	}

	contact := organizationContactLine(org)
	return subject, WrapInLayout(org.Name, contact, body)
}

func (slf *TemplateRenderService) loginPassword(user *models.User) string {
	if user == nil || user.EncryptedPlainPassword == "" {
		return PasswordUnavailable
	}
	password, err := pkg.DecryptString(user.EncryptedPlainPassword, slf.cryptoSecret)
	if err != nil {
		slf.logger.Warn().Err(err).Uint("userId", user.ID).Msg("Could not decrypt stored credential")
		return PasswordUnavailable
	}
	return password
}

func (slf *TemplateRenderService) loginURL(org models.Organization) string {
	base := org.FrontendURL
	if base == "" {
		base = slf.frontendURL
	}
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/login"
}

func organizationContactLine(org models.Organization) string {
	var parts []string
	if org.Email != "" {
		parts = append(parts, org.Email)
	}
	if org.Phone != "" {
		parts = append(parts, org.Phone)
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("%s | %s", org.Name, strings.Join(parts, " | "))
}
