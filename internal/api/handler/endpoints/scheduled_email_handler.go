package endpoints

import (
	"firmdesk"
	"firmdesk/internal/api/handler/mapper"
	"firmdesk/internal/api/handler/middleware"
	"firmdesk/internal/api/handler/request"
	"firmdesk/internal/api/handler/response"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/service"
	"firmdesk/pkg"
	"net/http"
	"strconv"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type scheduledEmailHandler struct {
	scheduledService *service.ScheduledEmailService
	emailMapper      mapper.EmailMapper
	config           firmdesk.AppConfig
	logger           zerolog.Logger
}

func newScheduledEmailHandler() *scheduledEmailHandler {
	return &scheduledEmailHandler{
		scheduledService: service.NewScheduledEmailService(),
		config:           firmdesk.GetConfig(),
		logger:           firmdesk.Logger,
	}
}

func ScheduledEmailHandler(router *graceful.Graceful) {
	h := newScheduledEmailHandler()

	routes := router.Group("/api/v1/scheduled-emails")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.list)
		routes.POST("/adhoc", h.scheduleAdhoc)
		routes.POST("/:id/cancel", h.cancel)
		routes.POST("/:id/retry", h.retry)
	}
}

func (slf *scheduledEmailHandler) list(c *gin.Context) {
	var clientID *uint
	if raw := c.Query("clientId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid client ID"})
			return
		}
		id := uint(parsed)
		clientID = &id
	}

	var status *models.ScheduledEmailStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ScheduledEmailStatus(raw)
		switch s {
		case models.ScheduledEmailStatusPending, models.ScheduledEmailStatusSent,
			models.ScheduledEmailStatusFailed, models.ScheduledEmailStatusCancelled:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid status filter"})
			return
		}
	}

	rows, err := slf.scheduledService.List(clientID, status)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list scheduled emails")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve scheduled emails"})
		return
	}

	c.JSON(http.StatusOK, slf.emailMapper.ToScheduledEmailDTOs(rows))
}

func (slf *scheduledEmailHandler) scheduleAdhoc(c *gin.Context) {
	var req request.AdhocEmail
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	row, err := slf.scheduledService.ScheduleAdhoc(req.ClientID, req.TemplateID, req.Recipients, req.SendInSeconds)
	if err != nil {
		slf.logger.Error().Err(err).Uint("clientId", req.ClientID).Msg("Failed to schedule ad-hoc email")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, slf.emailMapper.ToScheduledEmailDTO(*row))
}

func (slf *scheduledEmailHandler) cancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	row, err := slf.scheduledService.Cancel(id)
	if err != nil {
		c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, slf.emailMapper.ToScheduledEmailDTO(*row))
}

func (slf *scheduledEmailHandler) retry(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	row, err := slf.scheduledService.Retry(id)
	if err != nil {
		c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, slf.emailMapper.ToScheduledEmailDTO(*row))
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}
