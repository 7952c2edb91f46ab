package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// parseID reads a positive numeric path parameter. On failure it answers 400
// and returns false.
func parseID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest,
			fmt.Sprintf("Invalid %s: must be a positive integer", name)))
		return 0, false
	}
	return uint(id), true
}

// respondError maps service errors to HTTP statuses. notFoundCode names the
// missing resource for 404 answers.
func respondError(ctx *gin.Context, err error, notFoundCode string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, verr.Message,
			map[string]interface{}{"field": verr.Field}))
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(notFoundCode, err.Error()))
	case errors.Is(err, services.ErrForbidden):
		ctx.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "You are not allowed to access this resource"))
	case errors.Is(err, services.ErrConflict):
		ctx.JSON(http.StatusConflict, models.NewAPIError(models.ErrConflict, err.Error()))
	default:
		log.WithFields(log.Fields{
			"request_id": ctx.GetString(middleware.ContextRequestID),
			"path":       ctx.FullPath(),
		}).WithError(err).Error("Request failed")
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
	}
}

// respondBindError answers 400 for a body or query that failed binding.
func respondBindError(ctx *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]interface{}, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Request validation failed", fields))
		return
	}
	ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body"))
}

// requirePrincipal answers 401 when the route was reached without a token.
func requirePrincipal(ctx *gin.Context) bool {
	if middleware.PrincipalFrom(ctx).Anonymous() {
		ctx.JSON(http.StatusUnauthorized, models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
		return false
	}
	return true
}
