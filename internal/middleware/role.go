package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after OAuth2Auth. It aborts with 403 unless the caller
// has requiredRole.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p.Anonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}

		if p.Role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Insufficient permissions", map[string]interface{}{
				"required_role": requiredRole,
				"user_role":     p.Role,
				"user_id":       p.UserID,
			}))
			return
		}

		c.Next()
	}
}
