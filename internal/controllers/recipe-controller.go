package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	ListRecipes(ctx *gin.Context)
	GetRecipe(ctx *gin.Context)
	CreateRecipe(ctx *gin.Context)
	UpdateRecipe(ctx *gin.Context)
	DeleteRecipe(ctx *gin.Context)
	AddIngredient(ctx *gin.Context)
	RemoveIngredient(ctx *gin.Context)
	AddTag(ctx *gin.Context)
	RemoveTag(ctx *gin.Context)
	GetNutrition(ctx *gin.Context)
	SetNutrition(ctx *gin.Context)
	LookupNutrition(ctx *gin.Context)
}

type recipeController struct {
	service services.RecipeService
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(service services.RecipeService) RecipeController {
	return &recipeController{service: service}
}

type recipeRequest struct {
	Name              string  `json:"name" binding:"required,max=255"`
	Difficulty        int     `json:"difficulty" binding:"required,difficulty"`
	TimeNeededMinutes int     `json:"time_needed_minutes" binding:"min=0"`
	Public            bool    `json:"public"`
	ImageURL          *string `json:"image_url" binding:"omitempty,url"`
	Instructions      string  `json:"instructions"`
}

func (r recipeRequest) input() services.RecipeInput {
	return services.RecipeInput{
		Name:         r.Name,
		Difficulty:   models.Difficulty(r.Difficulty),
		TimeNeeded:   time.Duration(r.TimeNeededMinutes) * time.Minute,
		Public:       r.Public,
		ImageURL:     r.ImageURL,
		Instructions: r.Instructions,
	}
}

type ingredientEntryRequest struct {
	IngredientID uint     `json:"ingredient_id" binding:"required"`
	Quantity     float64  `json:"quantity" binding:"required,gt=0"`
	Calories     *float64 `json:"calories" binding:"omitempty,min=0"`
	Fat          *float64 `json:"fat" binding:"omitempty,min=0"`
	Carbs        *float64 `json:"carbs" binding:"omitempty,min=0"`
	Protein      *float64 `json:"protein" binding:"omitempty,min=0"`
}

type tagRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type nutritionRequest struct {
	Calories       float64 `json:"calories" binding:"min=0"`
	CaloriesColour int     `json:"calories_colour" binding:"colour"`
	Fat            float64 `json:"fat" binding:"min=0"`
	FatColour      int     `json:"fat_colour" binding:"colour"`
	Carbs          float64 `json:"carbs" binding:"min=0"`
	CarbsColour    int     `json:"carbs_colour" binding:"colour"`
	Protein        float64 `json:"protein" binding:"min=0"`
	ProteinColour  int     `json:"protein_colour" binding:"colour"`
}

// ListRecipes godoc
// @Summary List recipes
// @Description List public recipes, plus the caller's own recipes when a Bearer token is sent
// @Tags recipes
// @Produce json
// @Param q query string false "Case-insensitive search in name and instructions"
// @Param difficulty query int false "Difficulty (1 easy, 2 medium, 3 hard)"
// @Param tag query int false "Tag ID"
// @Param time query string false "Time bucket: under_30, 30_to_45, over_45"
// @Param sort query string false "difficulty, -difficulty, time_needed, -time_needed"
// @Success 200 {array} RecipeResponse
// @Failure 400 {object} models.APIError
// @Router /api/v1/public/recipes [get]
func (c *recipeController) ListRecipes(ctx *gin.Context) {
	filter := services.RecipeFilter{
		Query:      ctx.Query("q"),
		TimeBucket: ctx.Query("time"),
		Sort:       ctx.Query("sort"),
	}

	if raw := ctx.Query("difficulty"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid difficulty"))
			return
		}
		d := models.Difficulty(v)
		filter.Difficulty = &d
	}
	if raw := ctx.Query("tag"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid tag"))
			return
		}
		tagID := uint(v)
		filter.TagID = &tagID
	}

	recipes, err := c.service.ListRecipes(ctx.Request.Context(), middleware.PrincipalFrom(ctx), filter)
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}

	resp := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		resp = append(resp, newRecipeResponse(r))
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Description Public recipes are visible to everyone, private ones only to their owner
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/public/recipes/{id} [get]
func (c *recipeController) GetRecipe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	recipe, err := c.service.GetRecipe(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id)
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}
	ctx.JSON(http.StatusOK, newRecipeResponse(*recipe))
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body recipeRequest true "Recipe"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes [post]
func (c *recipeController) CreateRecipe(ctx *gin.Context) {
	if !requirePrincipal(ctx) {
		return
	}

	var req recipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	recipe, err := c.service.CreateRecipe(ctx.Request.Context(), middleware.PrincipalFrom(ctx), req.input())
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}
	ctx.JSON(http.StatusCreated, newRecipeResponse(*recipe))
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Only the owner or an admin may update; the owner never changes
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body recipeRequest true "Recipe"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id} [put]
func (c *recipeController) UpdateRecipe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req recipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	recipe, err := c.service.UpdateRecipe(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, req.input())
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}
	ctx.JSON(http.StatusOK, newRecipeResponse(*recipe))
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Removes the recipe with its ingredients, tags, nutrition profile and meal plan entries
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id} [delete]
func (c *recipeController) DeleteRecipe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.DeleteRecipe(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id); err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddIngredient godoc
// @Summary Add an ingredient to a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param entry body ingredientEntryRequest true "Ingredient and quantity"
// @Success 201 {object} ingredientEntryResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/ingredients [post]
func (c *recipeController) AddIngredient(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req ingredientEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	entry, err := c.service.AddIngredient(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, services.IngredientEntryInput{
		IngredientID: req.IngredientID,
		Quantity:     req.Quantity,
		Calories:     req.Calories,
		Fat:          req.Fat,
		Carbs:        req.Carbs,
		Protein:      req.Protein,
	})
	if err != nil {
		respondError(ctx, err, models.ErrNotFound)
		return
	}
	ctx.JSON(http.StatusCreated, newIngredientEntryResponse(*entry))
}

// RemoveIngredient godoc
// @Summary Remove an ingredient from a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Param entryId path int true "Recipe ingredient ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/ingredients/{entryId} [delete]
func (c *recipeController) RemoveIngredient(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	entryID, ok := parseID(ctx, "entryId")
	if !ok {
		return
	}

	if err := c.service.RemoveIngredient(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, entryID); err != nil {
		respondError(ctx, err, models.ErrNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddTag godoc
// @Summary Tag a recipe
// @Description Creates the tag when it does not exist yet; tagging twice is a no-op
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param tag body tagRequest true "Tag name"
// @Success 200 {object} models.Tag
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/tags [post]
func (c *recipeController) AddTag(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req tagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	tag, err := c.service.AddTag(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, req.Name)
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tag)
}

// RemoveTag godoc
// @Summary Remove a tag from a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Param tagId path int true "Tag ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/tags/{tagId} [delete]
func (c *recipeController) RemoveTag(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	tagID, ok := parseID(ctx, "tagId")
	if !ok {
		return
	}

	if err := c.service.RemoveTag(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, tagID); err != nil {
		respondError(ctx, err, models.ErrNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetNutrition godoc
// @Summary Get the stored nutrition profile of a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.NutritionProfile
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/nutrition [get]
func (c *recipeController) GetNutrition(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	profile, found, err := c.service.NutritionProfile(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id)
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}
	if !found {
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNutritionNoData, "Recipe has no nutrition profile"))
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// SetNutrition godoc
// @Summary Create or replace the nutrition profile of a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param profile body nutritionRequest true "Nutrition profile"
// @Success 200 {object} models.NutritionProfile
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/nutrition [put]
func (c *recipeController) SetNutrition(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req nutritionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	profile, err := c.service.SetNutrition(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, services.NutritionInput{
		Calories:       req.Calories,
		CaloriesColour: models.ColourCode(req.CaloriesColour),
		Fat:            req.Fat,
		FatColour:      models.ColourCode(req.FatColour),
		Carbs:          req.Carbs,
		CarbsColour:    models.ColourCode(req.CarbsColour),
		Protein:        req.Protein,
		ProteinColour:  models.ColourCode(req.ProteinColour),
	})
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// LookupNutrition godoc
// @Summary Estimate nutrition from the recipe's ingredients
// @Description Queries the external nutrition API. available is false when it has no data or cannot be reached.
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} NutritionLookupResponse
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/recipes/{id}/nutrition/lookup [get]
func (c *recipeController) LookupNutrition(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	facts, found, err := c.service.LookupNutrition(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id)
	if err != nil {
		respondError(ctx, err, models.ErrRecipeNotFound)
		return
	}

	resp := NutritionLookupResponse{Available: found}
	if found {
		rounded := facts.Rounded()
		resp.Nutrition = &rounded
	}
	ctx.JSON(http.StatusOK, resp)
}
