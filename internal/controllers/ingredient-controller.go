package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

// IngredientController serves the ingredient catalogue and the tag list
type IngredientController interface {
	ListIngredients(ctx *gin.Context)
	GetIngredient(ctx *gin.Context)
	CreateIngredient(ctx *gin.Context)
	DeleteIngredient(ctx *gin.Context)
	ListTags(ctx *gin.Context)
}

type ingredientController struct {
	service services.IngredientService
}

func NewIngredientController(service services.IngredientService) IngredientController {
	return &ingredientController{service: service}
}

type ingredientRequest struct {
	Name string `json:"name" binding:"required,max=255"`
	Unit string `json:"unit" binding:"required,unit"`
}

// ListIngredients godoc
// @Summary List ingredients
// @Tags ingredients
// @Produce json
// @Success 200 {array} models.Ingredient
// @Router /api/v1/public/ingredients [get]
func (c *ingredientController) ListIngredients(ctx *gin.Context) {
	ingredients, err := c.service.ListIngredients(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, models.ErrIngredientNotFound)
		return
	}
	ctx.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/ingredients/{id} [get]
func (c *ingredientController) GetIngredient(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	ingredient, err := c.service.GetIngredient(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, models.ErrIngredientNotFound)
		return
	}
	ctx.JSON(http.StatusOK, ingredient)
}

// CreateIngredient godoc
// @Summary Add an ingredient to the catalogue
// @Tags ingredients
// @Accept json
// @Produce json
// @Param ingredient body ingredientRequest true "Name and unit (g, ml or unit)"
// @Success 201 {object} models.Ingredient
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/ingredients [post]
func (c *ingredientController) CreateIngredient(ctx *gin.Context) {
	var req ingredientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	ingredient, err := c.service.CreateIngredient(ctx.Request.Context(), req.Name, models.MeasurementUnit(req.Unit))
	if err != nil {
		respondError(ctx, err, models.ErrIngredientNotFound)
		return
	}
	ctx.JSON(http.StatusCreated, ingredient)
}

// DeleteIngredient godoc
// @Summary Delete an ingredient
// @Description Admin only. The ingredient is removed from every recipe using it.
// @Tags ingredients
// @Param id path int true "Ingredient ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/admin/ingredients/{id} [delete]
func (c *ingredientController) DeleteIngredient(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.DeleteIngredient(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id); err != nil {
		respondError(ctx, err, models.ErrIngredientNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListTags godoc
// @Summary List tags
// @Tags ingredients
// @Produce json
// @Success 200 {array} models.Tag
// @Router /api/v1/public/tags [get]
func (c *ingredientController) ListTags(ctx *gin.Context) {
	tags, err := c.service.ListTags(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, models.ErrNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tags)
}
