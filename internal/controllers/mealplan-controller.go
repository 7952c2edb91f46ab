package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// MealPlanController handles HTTP requests related to meal plans
type MealPlanController interface {
	ListMealPlans(ctx *gin.Context)
	CreateMealPlan(ctx *gin.Context)
	GetMealPlan(ctx *gin.Context)
	RenameMealPlan(ctx *gin.Context)
	DeleteMealPlan(ctx *gin.Context)
	AddItem(ctx *gin.Context)
	RemoveItem(ctx *gin.Context)
	UpdateWeekdays(ctx *gin.Context)
	ShoppingList(ctx *gin.Context)
	WeeklyNutrition(ctx *gin.Context)
}

type mealPlanController struct {
	service services.MealPlanService
}

func NewMealPlanController(service services.MealPlanService) MealPlanController {
	return &mealPlanController{service: service}
}

type mealPlanRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type mealPlanItemRequest struct {
	RecipeID uint `json:"recipe_id" binding:"required"`
	Weekday  int  `json:"weekday" binding:"weekday"`
}

// An id that does not name an item of the plan, zero included, is skipped.
type weekdayItem struct {
	ID      uint `json:"id"`
	Weekday *int `json:"weekday" binding:"required,weekday"`
}

type weekdaysRequest struct {
	MealPlanItems []weekdayItem `json:"meal_plan_items" binding:"dive"`
}

// bulkStatus is the body of every weekday bulk update answer.
type bulkStatus struct {
	Status string `json:"status"`
}

var (
	bulkSuccess = bulkStatus{Status: "success"}
	bulkError   = bulkStatus{Status: "error"}
)

// ListMealPlans godoc
// @Summary List the caller's meal plans
// @Tags mealplans
// @Produce json
// @Success 200 {array} MealPlanResponse
// @Security BearerAuth
// @Router /api/v1/protected/mealplans [get]
func (c *mealPlanController) ListMealPlans(ctx *gin.Context) {
	plans, err := c.service.ListMealPlans(ctx.Request.Context(), middleware.PrincipalFrom(ctx))
	if err != nil {
		respondError(ctx, err, models.ErrMealPlanNotFound)
		return
	}

	resp := make([]MealPlanResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, newMealPlanResponse(p))
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateMealPlan godoc
// @Summary Create a meal plan
// @Tags mealplans
// @Accept json
// @Produce json
// @Param plan body mealPlanRequest true "Meal plan name"
// @Success 201 {object} MealPlanResponse
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans [post]
func (c *mealPlanController) CreateMealPlan(ctx *gin.Context) {
	var req mealPlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	plan, err := c.service.CreateMealPlan(ctx.Request.Context(), middleware.PrincipalFrom(ctx), req.Name)
	if err != nil {
		respondError(ctx, err, models.ErrMealPlanNotFound)
		return
	}
	ctx.JSON(http.StatusCreated, newMealPlanResponse(*plan))
}

// GetMealPlan godoc
// @Summary Get a meal plan with its shopping list and weekly nutrition
// @Description Nutrition values are rounded to one decimal
// @Tags mealplans
// @Produce json
// @Param id path int true "Meal plan ID"
// @Success 200 {object} MealPlanDetailResponse
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id} [get]
func (c *mealPlanController) GetMealPlan(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.service.Detail(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id)
	if err != nil {
		respondError(ctx, err, models.ErrMealPlanNotFound)
		return
	}
	ctx.JSON(http.StatusOK, newMealPlanDetailResponse(detail))
}

// RenameMealPlan godoc
// @Summary Rename a meal plan
// @Tags mealplans
// @Accept json
// @Produce json
// @Param id path int true "Meal plan ID"
// @Param plan body mealPlanRequest true "New name"
// @Success 200 {object} MealPlanResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id} [put]
func (c *mealPlanController) RenameMealPlan(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req mealPlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	plan, err := c.service.RenameMealPlan(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, req.Name)
	if err != nil {
		respondError(ctx, err, models.ErrMealPlanNotFound)
		return
	}
	ctx.JSON(http.StatusOK, newMealPlanResponse(*plan))
}

// DeleteMealPlan godoc
// @Summary Delete a meal plan
// @Tags mealplans
// @Param id path int true "Meal plan ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id} [delete]
func (c *mealPlanController) DeleteMealPlan(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.DeleteMealPlan(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id); err != nil {
		respondError(ctx, err, models.ErrMealPlanNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddItem godoc
// @Summary Schedule a recipe in a meal plan
// @Description weekday is 0 (Monday) to 6 (Sunday) and defaults to Monday
// @Tags mealplans
// @Accept json
// @Produce json
// @Param id path int true "Meal plan ID"
// @Param item body mealPlanItemRequest true "Recipe and weekday"
// @Success 201 {object} models.MealPlanItem
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id}/items [post]
func (c *mealPlanController) AddItem(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req mealPlanItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	item, err := c.service.AddRecipe(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, req.RecipeID, models.Weekday(req.Weekday))
	if err != nil {
		respondError(ctx, err, models.ErrNotFound)
		return
	}
	ctx.JSON(http.StatusCreated, item)
}

// RemoveItem godoc
// @Summary Remove a scheduled recipe from a meal plan
// @Tags mealplans
// @Param id path int true "Meal plan ID"
// @Param itemId path int true "Meal plan item ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id}/items/{itemId} [delete]
func (c *mealPlanController) RemoveItem(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(ctx, "itemId")
	if !ok {
		return
	}

	if err := c.service.RemoveItem(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, itemID); err != nil {
		respondError(ctx, err, models.ErrNotFound)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UpdateWeekdays godoc
// @Summary Move meal plan items to other weekdays
// @Description Updates row by row. Ids that are not part of the plan are skipped and the call still succeeds. Any weekday outside 0..6 rejects the whole batch.
// @Tags mealplans
// @Accept json
// @Produce json
// @Param id path int true "Meal plan ID"
// @Param items body weekdaysRequest true "Items and their new weekday"
// @Success 200 {object} bulkStatus
// @Failure 400 {object} bulkStatus
// @Failure 403 {object} bulkStatus
// @Failure 404 {object} bulkStatus
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id}/weekdays [post]
func (c *mealPlanController) UpdateWeekdays(ctx *gin.Context) {
	id, ok := parsePlanID(ctx)
	if !ok {
		return
	}

	var req weekdaysRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.WithError(err).WithField("meal_plan_id", id).Debug("Rejecting weekday update body")
		ctx.JSON(http.StatusBadRequest, bulkError)
		return
	}

	updates := make([]services.WeekdayUpdate, 0, len(req.MealPlanItems))
	for _, item := range req.MealPlanItems {
		updates = append(updates, services.WeekdayUpdate{ItemID: item.ID, Weekday: models.Weekday(*item.Weekday)})
	}

	if _, err := c.service.UpdateWeekdays(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id, updates); err != nil {
		status := bulkErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.WithError(err).WithField("meal_plan_id", id).Error("Weekday update failed")
		}
		ctx.JSON(status, bulkError)
		return
	}
	ctx.JSON(http.StatusOK, bulkSuccess)
}

// parsePlanID is parseID for the bulk endpoint, which answers with bulkError.
func parsePlanID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, bulkError)
		return 0, false
	}
	return uint(id), true
}

func bulkErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ShoppingList godoc
// @Summary Shopping list of a meal plan
// @Tags mealplans
// @Produce json
// @Param id path int true "Meal plan ID"
// @Success 200 {array} ShoppingListLine
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id}/shopping-list [get]
func (c *mealPlanController) ShoppingList(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	items, err := c.service.ShoppingList(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id)
	if err != nil {
		respondError(ctx, err, models.ErrMealPlanNotFound)
		return
	}
	ctx.JSON(http.StatusOK, newShoppingList(items))
}

// WeeklyNutrition godoc
// @Summary Per-weekday nutrition totals of a meal plan
// @Description Always seven entries, Monday to Sunday, with unrounded values
// @Tags mealplans
// @Produce json
// @Param id path int true "Meal plan ID"
// @Success 200 {array} services.DayNutrition
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/mealplans/{id}/nutrition [get]
func (c *mealPlanController) WeeklyNutrition(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	week, err := c.service.WeeklyNutrition(ctx.Request.Context(), middleware.PrincipalFrom(ctx), id)
	if err != nil {
		respondError(ctx, err, models.ErrMealPlanNotFound)
		return
	}
	ctx.JSON(http.StatusOK, week)
}
