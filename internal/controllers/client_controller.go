package controllers

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

type clientRequest struct {
	Name   string `json:"name" binding:"required,max=255"`
	Domain string `json:"domain" binding:"omitempty,url"`
	Scopes string `json:"scopes"`
}

type clientResponse struct {
	ClientID   string `json:"client_id"`
	Name       string `json:"name"`
	Domain     string `json:"domain,omitempty"`
	Scopes     string `json:"scopes"`
	GrantTypes string `json:"grant_types"`
	CreatedAt  string `json:"created_at"`
}

func newClientResponse(client models.OAuthClient) clientResponse {
	return clientResponse{
		ClientID:   client.ID,
		Name:       client.Name,
		Domain:     client.Domain,
		Scopes:     client.Scopes,
		GrantTypes: client.GrantTypes,
		CreatedAt:  client.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Create a client credentials client acting on behalf of the caller. The secret is only returned once.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body clientRequest true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.APIError "Invalid request"
// @Failure 500 {object} models.APIError "Client creation failed"
// @Security BearerAuth
// @Router /api/v1/protected/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	if !requirePrincipal(c) {
		return
	}

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}

	client := &models.OAuthClient{
		ID:         uuid.New().String(),
		Secret:     string(hashedSecret),
		Name:       req.Name,
		Domain:     req.Domain,
		Scopes:     strings.TrimSpace(req.Scopes),
		GrantTypes: "client_credentials",
		UserID:     middleware.PrincipalFrom(c).UserID,
	}

	if err := cc.clientService.CreateClient(c.Request.Context(), client); err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"client_id":     client.ID,
		"client_secret": secret,
		"name":          client.Name,
		"scopes":        client.Scopes,
		"grant_types":   client.GrantTypes,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} clientResponse "List of clients"
// @Failure 500 {object} models.APIError "Failed to retrieve clients"
// @Security BearerAuth
// @Router /api/v1/protected/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}

	resp := make([]clientResponse, 0, len(clients))
	for _, client := range clients {
		resp = append(resp, newClientResponse(client))
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete an OAuth2 client owned by the authenticated user
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.APIError "Client not found"
// @Security BearerAuth
// @Router /api/v1/protected/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		respondError(c, err, models.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
