package endpoints

import (
	"firmdesk"
	"firmdesk/internal/api/handler/middleware"
	"firmdesk/internal/api/handler/request"
	"firmdesk/internal/api/handler/response"
	"firmdesk/internal/api/service"
	"firmdesk/pkg"
	"net/http"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type emailHandler struct {
	mailService *service.MailService
	config      firmdesk.AppConfig
	logger      zerolog.Logger
}

func newEmailHandler() *emailHandler {
	return &emailHandler{
		mailService: service.NewMailService(),
		config:      firmdesk.GetConfig(),
		logger:      firmdesk.Logger,
	}
}

func EmailHandler(router *graceful.Graceful) {
	h := newEmailHandler()

	routes := router.Group("/api/v1/email")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("/diagnostics", h.diagnostics)
		routes.POST("/test", h.sendTest)
	}
}

// diagnostics reports whether SMTP is usable and which settings are
// still missing.
func (slf *emailHandler) diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, response.EmailDiagnostics{
		Configured:      slf.mailService.IsConfigured(),
		MissingSettings: slf.mailService.MissingSettings(),
	})
}

func (slf *emailHandler) sendTest(c *gin.Context) {
	var req request.TestEmail
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	if err := slf.mailService.TestConnection(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, response.APIError{Message: err.Error()})
		return
	}

	err := slf.mailService.Send(c.Request.Context(), service.OutgoingMail{
		To:      []string{req.To},
		Subject: "SMTP configuration test",
		Body:    "<p>This is a test message confirming your SMTP configuration works.</p>",
		IsHTML:  true,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test email sent"})
}
