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

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type clientHandler struct {
	clientService *service.ClientService
	config        firmdesk.AppConfig
	logger        zerolog.Logger
}

func newClientHandler() *clientHandler {
	return &clientHandler{
		clientService: service.NewClientService(),
		config:        firmdesk.GetConfig(),
		logger:        firmdesk.Logger,
	}
}

func ClientHandler(router *graceful.Graceful) {
	h := newClientHandler()

	routes := router.Group("/api/v1/clients")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.list)
		routes.GET("/:clientId", h.getByID)
		routes.POST("", h.create)
		routes.PUT("/:clientId", h.update)
		routes.DELETE("/:clientId", h.delete)
	}
}

func (slf *clientHandler) list(c *gin.Context) {
	organizationID, ok := pkg.GetOrganizationID(c)
	if !ok {
		return
	}

	clients, err := slf.clientService.ListForOrganization(organizationID)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list clients")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

func (slf *clientHandler) getByID(c *gin.Context) {
	id, ok := clientIDParam(c)
	if !ok {
		return
	}

	client, err := slf.clientService.FindByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, client)
}

func (slf *clientHandler) create(c *gin.Context) {
	organizationID, ok := pkg.GetOrganizationID(c)
	if !ok {
		return
	}

	var req request.CreateClient
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	client, err := slf.clientService.Create(models.Client{
		OrganizationID: organizationID,
		Name:           req.Name,
		CompanyName:    req.CompanyName,
		Email:          req.Email,
		Phone:          req.Phone,
	}, req.ServiceIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, client)
}

func (slf *clientHandler) update(c *gin.Context) {
	id, ok := clientIDParam(c)
	if !ok {
		return
	}

	var req request.UpdateClient
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	client, err := slf.clientService.Update(models.Client{
		ID:          id,
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Phone:       req.Phone,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, client)
}

func (slf *clientHandler) delete(c *gin.Context) {
	id, ok := clientIDParam(c)
	if !ok {
		return
	}

	if err := slf.clientService.Delete(id); err != nil {
		slf.logger.Error().Err(err).Uint("clientId", id).Msg("Failed to delete client")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to delete client"})
		return
	}

	c.Status(http.StatusNoContent)
}
