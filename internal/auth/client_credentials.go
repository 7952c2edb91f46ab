package auth

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/server"
)

// TokenHandler serves the token endpoint.
// @Summary Token Endpoint
// @Description Obtain an access token using the client credentials grant. Credentials may be sent as form fields or with HTTP Basic authentication.
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Must be client_credentials"
// @Param client_id formData string false "Client ID"
// @Param client_secret formData string false "Client Secret"
// @Param scope formData string false "Requested scope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /api/v1/oauth/token [post]
func (o *OAuthService) TokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
			_ = c.Error(err)
			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, models.NewOAuth2Error(models.ErrServerError, err.Error()))
			}
		}
	}
}

// clientInfoHandler reads client credentials from the form and falls back to
// HTTP Basic authentication.
func clientInfoHandler(r *http.Request) (string, string, error) {
	if r.FormValue("client_id") != "" {
		return server.ClientFormHandler(r)
	}
	return server.ClientBasicHandler(r)
}

// clientAuthorized reports whether the client was registered for grant.
func (o *OAuthService) clientAuthorized(clientID string, grant oauth2.GrantType) (bool, error) {
	var client models.OAuthClient
	if err := o.db.Select("id", "grant_types").Where("id = ?", clientID).First(&client).Error; err != nil {
		return false, nil
	}
	for _, g := range strings.Fields(client.GrantTypes) {
		if g == grant.String() {
			return true, nil
		}
	}
	return false, nil
}
