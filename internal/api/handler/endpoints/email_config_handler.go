package endpoints

import (
	"errors"
	"firmdesk"
	"firmdesk/internal/api/handler/mapper"
	"firmdesk/internal/api/handler/middleware"
	"firmdesk/internal/api/handler/request"
	"firmdesk/internal/api/handler/response"
	"firmdesk/internal/api/service"
	"firmdesk/pkg"
	"net/http"
	"strconv"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type emailConfigHandler struct {
	configService *service.EmailConfigService
	emailMapper   mapper.EmailMapper
	config        firmdesk.AppConfig
	logger        zerolog.Logger
}

func newEmailConfigHandler() *emailConfigHandler {
	return &emailConfigHandler{
		configService: service.NewEmailConfigService(),
		config:        firmdesk.GetConfig(),
		logger:        firmdesk.Logger,
	}
}

func EmailConfigHandler(router *graceful.Graceful) {
	h := newEmailConfigHandler()

	routes := router.Group("/api/v1/clients/:clientId/email-config")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.PUT("", h.save)
		routes.GET("", h.get)
		routes.DELETE("", h.delete)
	}
}

func clientIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("clientId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid client ID"})
		return 0, false
	}
	return uint(id), true
}

// save validates and stores the configuration document. Pending rows
// from the previous document are cancelled and the new schedule is
// expanded in the same call.
func (slf *emailConfigHandler) save(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	var req request.SaveEmailConfig
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse email config request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	saved, err := slf.configService.Save(clientID, slf.emailMapper.ToConfigData(req))
	if err != nil {
		var verrs service.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, response.ValidationFailure{
				Message: "Email configuration is invalid",
				Fields:  verrs,
			})
			return
		}
		slf.logger.Error().Err(err).Uint("clientId", clientID).Msg("Failed to save email configuration")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, saved)
}

func (slf *emailConfigHandler) get(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	cfg, err := slf.configService.Get(clientID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (slf *emailConfigHandler) delete(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	if err := slf.configService.Delete(clientID); err != nil {
		slf.logger.Error().Err(err).Uint("clientId", clientID).Msg("Failed to delete email configuration")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to delete email configuration"})
		return
	}

	c.Status(http.StatusNoContent)
}
