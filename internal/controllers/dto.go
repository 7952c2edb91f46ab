package controllers

import (
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/nutrition"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/services"
)

type ingredientEntryResponse struct {
	ID           uint                   `json:"id"`
	IngredientID uint                   `json:"ingredient_id"`
	Name         string                 `json:"name"`
	Unit         models.MeasurementUnit `json:"unit"`
	Quantity     float64                `json:"quantity"`
	Display      string                 `json:"display"`
	Calories     *float64               `json:"calories,omitempty"`
	Fat          *float64               `json:"fat,omitempty"`
	Carbs        *float64               `json:"carbs,omitempty"`
	Protein      *float64               `json:"protein,omitempty"`
}

// RecipeResponse is the JSON shape of a recipe.
type RecipeResponse struct {
	ID                uint                      `json:"id"`
	UserID            uint                      `json:"user_id"`
	Name              string                    `json:"name"`
	Difficulty        models.Difficulty         `json:"difficulty"`
	DifficultyLabel   string                    `json:"difficulty_label"`
	TimeNeededMinutes int                       `json:"time_needed_minutes"`
	TimeNeededDisplay string                    `json:"time_needed_display"`
	Public            bool                      `json:"public"`
	ImageURL          *string                   `json:"image_url,omitempty"`
	Instructions      string                    `json:"instructions"`
	Ingredients       []ingredientEntryResponse `json:"ingredients"`
	Tags              []models.Tag              `json:"tags"`
	Nutrition         *models.NutritionProfile  `json:"nutrition,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

func newIngredientEntryResponse(e models.RecipeIngredient) ingredientEntryResponse {
	return ingredientEntryResponse{
		ID:           e.ID,
		IngredientID: e.IngredientID,
		Name:         e.Ingredient.Name,
		Unit:         e.Ingredient.Unit,
		Quantity:     e.Quantity,
		Display:      e.String(),
		Calories:     e.Calories,
		Fat:          e.Fat,
		Carbs:        e.Carbs,
		Protein:      e.Protein,
	}
}

func newRecipeResponse(r models.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:                r.ID,
		UserID:            r.UserID,
		Name:              r.Name,
		Difficulty:        r.Difficulty,
		DifficultyLabel:   r.Difficulty.Label(),
		TimeNeededMinutes: int(r.TimeNeeded / time.Minute),
		TimeNeededDisplay: models.HumaniseDuration(r.TimeNeeded),
		Public:            r.Public,
		ImageURL:          r.ImageURL,
		Instructions:      r.Instructions,
		Ingredients:       make([]ingredientEntryResponse, 0, len(r.Ingredients)),
		Tags:              r.Tags,
		Nutrition:         r.Nutrition,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []models.Tag{}
	}
	for _, e := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, newIngredientEntryResponse(e))
	}
	return resp
}

// ShoppingListLine is one ingredient total of a meal plan.
type ShoppingListLine struct {
	IngredientID   uint                   `json:"ingredient_id"`
	IngredientName string                 `json:"ingredient_name"`
	Unit           models.MeasurementUnit `json:"unit"`
	UnitLabel      string                 `json:"unit_label"`
	TotalQuantity  float64                `json:"total_quantity"`
}

func newShoppingList(items []services.ShoppingListItem) []ShoppingListLine {
	lines := make([]ShoppingListLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, ShoppingListLine{
			IngredientID:   item.IngredientID,
			IngredientName: item.IngredientName,
			Unit:           item.Unit,
			UnitLabel:      item.Unit.Label(),
			TotalQuantity:  item.TotalQuantity,
		})
	}
	return lines
}

// MealPlanResponse is a meal plan without its aggregates.
type MealPlanResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newMealPlanResponse(p models.MealPlan) MealPlanResponse {
	return MealPlanResponse{ID: p.ID, UserID: p.UserID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

// MealPlanDetailResponse is the meal plan page: items, shopping list and the
// weekly nutrition summary rounded to one decimal.
type MealPlanDetailResponse struct {
	MealPlanResponse
	Items            []services.PlanEntry     `json:"items"`
	ShoppingList     []ShoppingListLine       `json:"shopping_list"`
	NutritionSummary services.WeeklyNutrition `json:"nutrition_summary"`
}

func newMealPlanDetailResponse(d *services.MealPlanDetail) MealPlanDetailResponse {
	return MealPlanDetailResponse{
		MealPlanResponse: newMealPlanResponse(d.Plan),
		Items:            d.Entries,
		ShoppingList:     newShoppingList(d.ShoppingList),
		NutritionSummary: d.Nutrition.Rounded(),
	}
}

// NutritionLookupResponse reports what the external nutrition API returned.
// Available is false when it had no data or could not be reached.
type NutritionLookupResponse struct {
	Available bool             `json:"available"`
	Nutrition *nutrition.Facts `json:"nutrition,omitempty"`
}
