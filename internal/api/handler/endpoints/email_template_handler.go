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

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type emailTemplateHandler struct {
	templateService *service.EmailTemplateService
	emailMapper     mapper.EmailMapper
	config          firmdesk.AppConfig
	logger          zerolog.Logger
}

func newEmailTemplateHandler() *emailTemplateHandler {
	return &emailTemplateHandler{
		templateService: service.NewEmailTemplateService(),
		config:          firmdesk.GetConfig(),
		logger:          firmdesk.Logger,
	}
}

func EmailTemplateHandler(router *graceful.Graceful) {
	h := newEmailTemplateHandler()

	routes := router.Group("/api/v1/email-templates")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.list)
		routes.GET("/masters", h.listMasters)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.POST("/:id/customize", h.customize)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)
	}
}

func (slf *emailTemplateHandler) list(c *gin.Context) {
	organizationID, ok := pkg.GetOrganizationID(c)
	if !ok {
		return
	}

	templates, err := slf.templateService.ListForOrganization(organizationID)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list templates")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve templates"})
		return
	}

	c.JSON(http.StatusOK, slf.emailMapper.ToTemplateDTOs(templates))
}

func (slf *emailTemplateHandler) listMasters(c *gin.Context) {
	templates, err := slf.templateService.ListMasters()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list master templates")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve templates"})
		return
	}

	c.JSON(http.StatusOK, slf.emailMapper.ToTemplateDTOs(templates))
}

func (slf *emailTemplateHandler) getByID(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	tmpl, err := slf.templateService.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, slf.emailMapper.ToTemplateDTO(*tmpl))
}

func (slf *emailTemplateHandler) create(c *gin.Context) {
	organizationID, ok := pkg.GetOrganizationID(c)
	if !ok {
		return
	}

	var req request.CreateEmailTemplate
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	created, err := slf.templateService.Create(models.EmailTemplate{
		OrganizationID: &organizationID,
		Name:           req.Name,
		Subject:        req.Subject,
		Body:           req.Body,
		BodyFormat:     models.BodyFormat(req.BodyFormat),
		Description:    req.Description,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, slf.emailMapper.ToTemplateDTO(*created))
}

// customize clones a master template into the caller's organization.
func (slf *emailTemplateHandler) customize(c *gin.Context) {
	organizationID, ok := pkg.GetOrganizationID(c)
	if !ok {
		return
	}

	id, ok := idParam(c)
	if !ok {
		return
	}

	copy, err := slf.templateService.Customize(id, organizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, slf.emailMapper.ToTemplateDTO(*copy))
}

func (slf *emailTemplateHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req request.UpdateEmailTemplate
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	updated, err := slf.templateService.Update(models.EmailTemplate{
		ID:          id,
		Name:        req.Name,
		Subject:     req.Subject,
		Body:        req.Body,
		BodyFormat:  models.BodyFormat(req.BodyFormat),
		Description: req.Description,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, slf.emailMapper.ToTemplateDTO(*updated))
}

func (slf *emailTemplateHandler) delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := slf.templateService.Delete(id); err != nil {
		c.JSON(http.StatusConflict, response.APIError{Message: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
