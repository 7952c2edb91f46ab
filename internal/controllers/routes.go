package controllers

import (
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/middleware"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Handlers groups every controller mounted under /api/v1.
type Handlers struct {
	Auth        *AuthController
	Clients     *ClientController
	Recipes     RecipeController
	Ingredients IngredientController
	MealPlans   MealPlanController
	// OAuthToken serves the client credentials token endpoint.
	OAuthToken gin.HandlerFunc
}

// RegisterRoutes mounts the API on router. Public routes accept an optional
// Bearer token; protected routes require one.
func RegisterRoutes(router gin.IRouter, h Handlers, jwtSecret []byte) {
	v1 := router.Group("/api/v1")

	authApi := v1.Group("/auth")
	{
		authApi.POST("/register", h.Auth.Register)
		authApi.POST("/login", h.Auth.Login)
	}

	if h.OAuthToken != nil {
		v1.POST("/oauth/token", h.OAuthToken)
	}

	publicApi := v1.Group("/public")
	publicApi.Use(middleware.OptionalAuth(jwtSecret))
	{
		publicApi.GET("/recipes", h.Recipes.ListRecipes)
		publicApi.GET("/recipes/:id", h.Recipes.GetRecipe)
		publicApi.GET("/ingredients", h.Ingredients.ListIngredients)
		publicApi.GET("/ingredients/:id", h.Ingredients.GetIngredient)
		publicApi.GET("/tags", h.Ingredients.ListTags)
	}

	protectedApi := v1.Group("/protected")
	protectedApi.Use(middleware.OAuth2Auth(jwtSecret))
	{
		recipes := protectedApi.Group("/recipes")
		recipes.POST("", h.Recipes.CreateRecipe)
		recipes.PUT("/:id", h.Recipes.UpdateRecipe)
		recipes.DELETE("/:id", h.Recipes.DeleteRecipe)
		recipes.POST("/:id/ingredients", h.Recipes.AddIngredient)
		recipes.DELETE("/:id/ingredients/:entryId", h.Recipes.RemoveIngredient)
		recipes.POST("/:id/tags", h.Recipes.AddTag)
		recipes.DELETE("/:id/tags/:tagId", h.Recipes.RemoveTag)
		recipes.GET("/:id/nutrition", h.Recipes.GetNutrition)
		recipes.PUT("/:id/nutrition", h.Recipes.SetNutrition)
		recipes.GET("/:id/nutrition/lookup", h.Recipes.LookupNutrition)

		protectedApi.POST("/ingredients", h.Ingredients.CreateIngredient)

		plans := protectedApi.Group("/mealplans")
		plans.GET("", h.MealPlans.ListMealPlans)
		plans.POST("", h.MealPlans.CreateMealPlan)
		plans.GET("/:id", h.MealPlans.GetMealPlan)
		plans.PUT("/:id", h.MealPlans.RenameMealPlan)
		plans.DELETE("/:id", h.MealPlans.DeleteMealPlan)
		plans.POST("/:id/items", h.MealPlans.AddItem)
		plans.DELETE("/:id/items/:itemId", h.MealPlans.RemoveItem)
		plans.POST("/:id/weekdays", h.MealPlans.UpdateWeekdays)
		plans.GET("/:id/shopping-list", h.MealPlans.ShoppingList)
		plans.GET("/:id/nutrition", h.MealPlans.WeeklyNutrition)

		clients := protectedApi.Group("/clients")
		clients.GET("", h.Clients.ListClients)
		clients.POST("", h.Clients.CreateClient)
		clients.DELETE("/:id", h.Clients.DeleteClient)

		adminApi := protectedApi.Group("/admin")
		adminApi.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminApi.DELETE("/ingredients/:id", h.Ingredients.DeleteIngredient)
		}
	}
}
