package service

import (
	"firmdesk/internal/api/models"
	"firmdesk/pkg"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer() *TemplateRenderService {
	return &TemplateRenderService{
		logger:       zerolog.Nop(),
		cryptoSecret: "render-test-secret",
		frontendURL:  "https://portal.example.com/",
	}
}

func TestRenderTemplate_Substitution(t *testing.T) {
	vars := map[string]string{
		"client_name": "Asha Traders",
		"amount":      "1,200.00",
	}

	out := RenderTemplate("Dear {{client_name}}, {{ amount }} is due. Ref {{unknown_var}}.", vars)

	assert.Equal(t, "Dear Asha Traders, 1,200.00 is due. Ref .", out,
		"unknown placeholders resolve to the empty string")
}

func TestRenderTemplate_ValuesAreLiteral(t *testing.T) {
	vars := map[string]string{
		"client_name": "{{org_name}}",
		"org_name":    "Acme",
	}

	out := RenderTemplate("Hello {{client_name}}", vars)

	assert.Equal(t, "Hello {{org_name}}", out, "substituted values must not be expanded again")
}

func TestPlainTextToHTML(t *testing.T) {
	body := "Dear Sir,\nYour GST filing is due.\n\nRegards,\n<The Firm> & Co."

	out := PlainTextToHTML(body)

	assert.Equal(t, "<p>Dear Sir,<br>Your GST filing is due.</p><p>Regards,<br>&lt;The Firm&gt; &amp; Co.</p>", out)
}

func TestRenderEmail_PlainVersusHTML(t *testing.T) {
	renderer := newTestRenderer()
	org := models.Organization{Name: "Sharma & Associates", Email: "office@sharma.example"}
	vars := map[string]string{"client_name": "Asha <Traders>"}

	plain := models.EmailTemplate{
		Subject:    "Reminder for {{client_name}}",
		Body:       "Hello {{client_name}} & welcome.",
		BodyFormat: models.BodyFormatPlain,
	}
	subject, body := renderer.RenderEmail(plain, org, vars)
	assert.Equal(t, "Reminder for Asha <Traders>", subject)
	assert.Contains(t, body, "Hello Asha &lt;Traders&gt; &amp; welcome.", "plain bodies are escaped")
	assert.Contains(t, body, "Sharma &amp; Associates")
	assert.Contains(t, body, "automated message")

	html := models.EmailTemplate{
		Subject:    "Reminder",
		Body:       "<p>Hello <b>{{client_name}}</b></p>",
		BodyFormat: models.BodyFormatHTML,
	}
	_, body = renderer.RenderEmail(html, org, vars)
	assert.Contains(t, body, "<p>Hello <b>Asha <Traders></b></p>", "html bodies pass through untouched")
}

func TestRenderEmail_DetectsMarkupInPlainTemplates(t *testing.T) {
	renderer := newTestRenderer()
	org := models.Organization{Name: "Sharma & Associates"}

	tmpl := models.EmailTemplate{
		Subject:    "Notice",
		Body:       "<div>Hello {{client_name}}</div>",
		BodyFormat: models.BodyFormatPlain,
	}
	_, body := renderer.RenderEmail(tmpl, org, map[string]string{"client_name": "Asha"})

	assert.Contains(t, body, "<div>Hello Asha</div>",
		"a body carrying markup is kept as HTML regardless of the declared format")
	assert.NotContains(t, body, "&lt;div&gt;")
}

func TestContainsHTMLTag(t *testing.T) {
	assert.True(t, ContainsHTMLTag("<p>hi</p>"))
	assert.True(t, ContainsHTMLTag("before <BR> after"))
	assert.False(t, ContainsHTMLTag("a < b and b > c"))
	assert.False(t, ContainsHTMLTag("plain text only"))
}

func TestBuildVariables(t *testing.T) {
	renderer := newTestRenderer()

	client := models.Client{Name: "Asha Traders", CompanyName: "Asha Pvt Ltd", Email: "asha@example.com", Phone: "99999"}
	org := models.Organization{Name: "Sharma & Associates", Email: "office@sharma.example", City: "Pune"}
	tmpl := models.EmailTemplate{Name: "GST Filing", Description: "Monthly GST return"}
	scheduled := time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC)

	vars := renderer.BuildVariables(client, org, nil, tmpl, RenderVars{ScheduledDate: scheduled})

	assert.Equal(t, "Asha Traders", vars["client_name"])
	assert.Equal(t, "Asha Pvt Ltd", vars["company_name"])
	assert.Equal(t, "Sharma & Associates", vars["org_name"])
	assert.Equal(t, "Pune", vars["org_city"])
	assert.Equal(t, "GST Filing", vars["service_name"])
	assert.Equal(t, "Monthly GST return", vars["service_description"])
	assert.Equal(t, "2026-04-20", vars["scheduled_date"])
	assert.Equal(t, "2026-04-20", vars["deadline_date"], "deadline defaults to the scheduled date")
	assert.Equal(t, "asha@example.com", vars["login_email"])
	assert.Equal(t, "https://portal.example.com/login", vars["login_url"])
}

func TestBuildVariables_LoginEmailPrefersPortalAccount(t *testing.T) {
	renderer := newTestRenderer()
	client := models.Client{Name: "Asha Traders", Email: "contact@asha.example"}
	org := models.Organization{Name: "Sharma"}
	tmpl := models.EmailTemplate{Name: "Welcome"}

	user := models.User{ID: 7, Email: "portal@asha.example"}
	vars := renderer.BuildVariables(client, org, &user, tmpl, RenderVars{})
	assert.Equal(t, "portal@asha.example", vars["login_email"])

	blank := models.User{ID: 8}
	vars = renderer.BuildVariables(client, org, &blank, tmpl, RenderVars{})
	assert.Equal(t, "contact@asha.example", vars["login_email"],
		"an account without an email falls back to the client contact")
}

func TestBuildVariables_LoginPassword(t *testing.T) {
	renderer := newTestRenderer()
	client := models.Client{Email: "asha@example.com"}
	org := models.Organization{Name: "Sharma"}
	tmpl := models.EmailTemplate{Name: "Welcome"}

	vars := renderer.BuildVariables(client, org, nil, tmpl, RenderVars{})
	assert.Equal(t, PasswordUnavailable, vars["login_password"], "no user account means the placeholder")

	encrypted, err := pkg.EncryptString("s3cret-pass", "render-test-secret")
	require.NoError(t, err)
	user := models.User{ID: 7, EncryptedPlainPassword: encrypted}

	vars = renderer.BuildVariables(client, org, &user, tmpl, RenderVars{})
	assert.Equal(t, "s3cret-pass", vars["login_password"])

	corrupted := user
	corrupted.EncryptedPlainPassword = "not-valid-ciphertext"
	vars = renderer.BuildVariables(client, org, &corrupted, tmpl, RenderVars{})
	assert.Equal(t, PasswordUnavailable, vars["login_password"], "decrypt failures degrade to the placeholder")
}

func TestLoginURL_TrailingSlashes(t *testing.T) {
	renderer := newTestRenderer()

	org := models.Organization{FrontendURL: "https://firm.example.com///"}
	assert.Equal(t, "https://firm.example.com/login", renderer.loginURL(org))

	assert.Equal(t, "https://portal.example.com/login", renderer.loginURL(models.Organization{}),
		"falls back to the application frontend URL")

	bare := &TemplateRenderService{logger: zerolog.Nop()}
	assert.Equal(t, "", bare.loginURL(models.Organization{}), "no base URL means empty login_url")
}

func TestWrapInLayout_EscapesOrgName(t *testing.T) {
	out := WrapInLayout("A & B", "a@b.c", "<p>content</p>")

	assert.True(t, strings.Contains(out, "A &amp; B"))
	assert.True(t, strings.Contains(out, "<p>content</p>"))
}
