package endpoints

import (
	"firmdesk"
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

type organizationHandler struct {
	orgService *service.OrganizationService
	config     firmdesk.AppConfig
	logger     zerolog.Logger
}

func newOrganizationHandler() *organizationHandler {
	return &organizationHandler{
		orgService: service.NewOrganizationService(),
		config:     firmdesk.GetConfig(),
		logger:     firmdesk.Logger,
	}
}

func OrganizationHandler(router *graceful.Graceful) {
	h := newOrganizationHandler()

	routes := router.Group("/api/v1/organizations")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.list)
		routes.GET("/:id", h.getByID)
		routes.PUT("/:id", h.update)
	}

	admin := router.Group("/api/v1/organizations")
	admin.Use(middleware.AuthMiddleware(h.config))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("", h.create)
		admin.DELETE("/:id", h.delete)
	}
}

func (slf *organizationHandler) list(c *gin.Context) {
	orgs, err := slf.orgService.GetAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list organizations")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve organizations"})
		return
	}

	c.JSON(http.StatusOK, orgs)
}

func (slf *organizationHandler) getByID(c *gin.Context) {
	id, ok := orgIDParam(c)
	if !ok {
		return
	}

	org, err := slf.orgService.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, org)
}

func (slf *organizationHandler) create(c *gin.Context) {
	var req request.SaveOrganization
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	org, err := slf.orgService.Create(orgFromRequest(0, req))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (slf *organizationHandler) update(c *gin.Context) {
	id, ok := orgIDParam(c)
	if !ok {
		return
	}

	var req request.SaveOrganization
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	org, err := slf.orgService.Update(orgFromRequest(id, req))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, org)
}

func (slf *organizationHandler) delete(c *gin.Context) {
	id, ok := orgIDParam(c)
	if !ok {
		return
	}

	if err := slf.orgService.Delete(id); err != nil {
		slf.logger.Error().Err(err).Uint("organizationId", id).Msg("Failed to delete organization")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to delete organization"})
		return
	}

	c.Status(http.StatusNoContent)
}

func orgIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

func orgFromRequest(id uint, req request.SaveOrganization) models.Organization {
	return models.Organization{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Pincode:      req.Pincode,
		SmtpHost:     req.SmtpHost,
		SmtpPort:     req.SmtpPort,
		SmtpUsername: req.SmtpUsername,
		SmtpPassword: req.SmtpPassword,
		SmtpFrom:     req.SmtpFrom,
		SmtpFromName: req.SmtpFromName,
		SmtpUseSSL:   req.SmtpUseSSL,
		FrontendURL:  req.FrontendURL,
	}
}
