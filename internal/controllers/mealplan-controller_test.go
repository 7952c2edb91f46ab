package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/nutrition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdaysPath(planID uint) string {
	return fmt.Sprintf("/api/v1/protected/mealplans/%d/weekdays", planID)
}

func TestUpdateWeekdays(t *testing.T) {
	api := newTestAPI(t, nil)
	owner := api.createUser("owner@example.com", models.RoleUser)
	recipe := api.seedRecipe(owner, "Pancakes", false)
	plan := api.seedPlan(owner, "Week 1")
	first := api.schedule(plan, recipe, models.Monday)
	second := api.schedule(plan, recipe, models.Tuesday)

	t.Run("moves every listed item", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{
				{"id": first.ID, "weekday": 4},
				{"id": second.ID, "weekday": 6},
			},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
		assert.Equal(t, models.Friday, api.weekdayOf(first.ID))
		assert.Equal(t, models.Sunday, api.weekdayOf(second.ID))
	})

	t.Run("monday is a valid target", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{{"id": first.ID, "weekday": 0}},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, models.Monday, api.weekdayOf(first.ID))
	})

	t.Run("unknown ids are skipped", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{
				{"id": 99999, "weekday": 2},
				{"id": second.ID, "weekday": 3},
			},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
		assert.Equal(t, models.Thursday, api.weekdayOf(second.ID))
	})

	t.Run("out of range weekday rejects the whole batch", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{
				{"id": first.ID, "weekday": 2},
				{"id": second.ID, "weekday": 7},
			},
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
		assert.Equal(t, models.Monday, api.weekdayOf(first.ID))
	})

	t.Run("missing weekday", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{{"id": first.ID}},
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
	})

	t.Run("malformed body", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), `{"meal_plan_items": [`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
	})

	t.Run("unknown plan", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(424242), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{{"id": first.ID, "weekday": 1}},
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
	})

	t.Run("plan of another user", func(t *testing.T) {
		other := api.createUser("other@example.com", models.RoleUser)
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(other), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{{"id": first.ID, "weekday": 5}},
		})

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
		assert.Equal(t, models.Monday, api.weekdayOf(first.ID))
	})

	t.Run("missing item list is an empty batch", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), `{}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	})

	t.Run("zero id is skipped", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{
				{"id": 0, "weekday": 3},
				{"id": second.ID, "weekday": 1},
			},
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
		assert.Equal(t, models.Tuesday, api.weekdayOf(second.ID))
	})

	t.Run("foreign plan with invalid weekday is forbidden", func(t *testing.T) {
		intruder := api.createUser("intruder@example.com", models.RoleUser)
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), api.token(intruder), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{{"id": first.ID, "weekday": 9}},
		})

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
	})

	t.Run("unknown plan with invalid weekday is not found", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(424242), api.token(owner), map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{{"id": first.ID, "weekday": 9}},
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"status":"error"}`, w.Body.String())
	})

	t.Run("requires a token", func(t *testing.T) {
		w := api.do(http.MethodPost, weekdaysPath(plan.ID), "", map[string]interface{}{
			"meal_plan_items": []map[string]interface{}{{"id": first.ID, "weekday": 5}},
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetMealPlanDetail(t *testing.T) {
	api := newTestAPI(t, nil)
	owner := api.createUser("owner@example.com", models.RoleUser)
	flour := api.seedIngredient("Flour", models.UnitGrams)
	sugar := api.seedIngredient("Sugar", models.UnitGrams)

	cake := api.seedRecipe(owner, "Cake", false)
	api.seedEntry(cake, flour, 100)
	api.seedEntry(cake, sugar, 50)
	api.seedProfile(cake, 33.333, 10.06, 30, 15)

	plan := api.seedPlan(owner, "Baking week")
	api.schedule(plan, cake, models.Monday)
	api.schedule(plan, cake, models.Wednesday)

	w := api.do(http.MethodGet, fmt.Sprintf("/api/v1/protected/mealplans/%d", plan.ID), api.token(owner), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	type day struct {
		Weekday int `json:"weekday"`
		Day     string
		nutrition.Facts
	}
	body := decode[struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Items []struct {
			ID         uint   `json:"id"`
			RecipeName string `json:"recipe_name"`
			Weekday    int    `json:"weekday"`
		} `json:"items"`
		ShoppingList     []ShoppingListLine `json:"shopping_list"`
		NutritionSummary []day              `json:"nutrition_summary"`
	}](t, w)

	assert.Equal(t, plan.ID, body.ID)
	assert.Equal(t, "Baking week", body.Name)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "Cake", body.Items[0].RecipeName)
	assert.Equal(t, 0, body.Items[0].Weekday)
	assert.Equal(t, 2, body.Items[1].Weekday)

	require.Len(t, body.ShoppingList, 2)
	assert.Equal(t, "Flour", body.ShoppingList[0].IngredientName)
	assert.Equal(t, 200.0, body.ShoppingList[0].TotalQuantity)
	assert.Equal(t, "grams", body.ShoppingList[0].UnitLabel)
	assert.Equal(t, "Sugar", body.ShoppingList[1].IngredientName)
	assert.Equal(t, 100.0, body.ShoppingList[1].TotalQuantity)

	require.Len(t, body.NutritionSummary, 7)
	assert.Equal(t, "Monday", body.NutritionSummary[0].Day)
	assert.Equal(t, 33.3, body.NutritionSummary[0].Calories)
	assert.Equal(t, 10.1, body.NutritionSummary[0].Fat)
	assert.Equal(t, 0.0, body.NutritionSummary[1].Calories)
	assert.Equal(t, 33.3, body.NutritionSummary[2].Calories)
	assert.Equal(t, "Sunday", body.NutritionSummary[6].Day)
}

func TestGetMealPlanOfAnotherUser(t *testing.T) {
	api := newTestAPI(t, nil)
	owner := api.createUser("owner@example.com", models.RoleUser)
	other := api.createUser("other@example.com", models.RoleUser)
	plan := api.seedPlan(owner, "Private")

	w := api.do(http.MethodGet, fmt.Sprintf("/api/v1/protected/mealplans/%d", plan.ID), api.token(other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/v1/protected/mealplans/9999", api.token(owner), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.ErrMealPlanNotFound, decode[models.APIError](t, w).Code)
}

func TestMealPlanLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	owner := api.createUser("owner@example.com", models.RoleUser)
	recipe := api.seedRecipe(owner, "Soup", false)
	token := api.token(owner)

	w := api.do(http.MethodPost, "/api/v1/protected/mealplans", token, map[string]string{"name": "Week 2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode[MealPlanResponse](t, w)
	assert.Equal(t, owner.ID, plan.UserID)

	w = api.do(http.MethodPost, fmt.Sprintf("/api/v1/protected/mealplans/%d/items", plan.ID), token,
		map[string]interface{}{"recipe_id": recipe.ID, "weekday": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/api/v1/protected/mealplans/%d/items", plan.ID), token,
		map[string]interface{}{"recipe_id": recipe.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[models.MealPlanItem](t, w)
	assert.Equal(t, models.Monday, item.Weekday)

	w = api.do(http.MethodPut, fmt.Sprintf("/api/v1/protected/mealplans/%d", plan.ID), token, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decode[MealPlanResponse](t, w).Name)

	w = api.do(http.MethodGet, "/api/v1/protected/mealplans", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]MealPlanResponse](t, w), 1)

	w = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/protected/mealplans/%d/items/%d", plan.ID, item.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/protected/mealplans/%d", plan.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/v1/protected/mealplans/%d", plan.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingListAndWeeklyNutritionEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)
	owner := api.createUser("owner@example.com", models.RoleUser)
	egg := api.seedIngredient("Egg", models.UnitUnits)
	omelette := api.seedRecipe(owner, "Omelette", false)
	api.seedEntry(omelette, egg, 3)
	api.seedProfile(omelette, 200, 10, 30, 15)

	plan := api.seedPlan(owner, "Eggs")
	api.schedule(plan, omelette, models.Friday)
	api.schedule(plan, omelette, models.Friday)
	token := api.token(owner)

	w := api.do(http.MethodGet, fmt.Sprintf("/api/v1/protected/mealplans/%d/shopping-list", plan.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	lines := decode[[]ShoppingListLine](t, w)
	require.Len(t, lines, 1)
	assert.Equal(t, 6.0, lines[0].TotalQuantity)
	assert.Equal(t, models.UnitUnits, lines[0].Unit)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/v1/protected/mealplans/%d/nutrition", plan.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	days := decode[[]nutrition.Facts](t, w)
	require.Len(t, days, 7)
	assert.Equal(t, nutrition.Facts{Calories: 400, Fat: 20, Carbs: 60, Protein: 30}, days[4])
	assert.Equal(t, nutrition.Facts{}, days[0])

	empty := api.seedPlan(owner, "Empty")
	w = api.do(http.MethodGet, fmt.Sprintf("/api/v1/protected/mealplans/%d/shopping-list", empty.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
