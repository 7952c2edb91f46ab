package services

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-mealplanner-api/internal/authz"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/database"
	"github.com/franciscosanchezn/gin-mealplanner-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Email: email, Name: email, Password: "hashed", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func principalOf(u models.User) authz.Principal {
	return authz.Principal{UserID: u.ID, Role: u.Role}
}

func createIngredient(t *testing.T, db *gorm.DB, name string, unit models.MeasurementUnit) models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, Unit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return ingredient
}

func createRecipe(t *testing.T, db *gorm.DB, owner models.User, name string, public bool) models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		UserID:       owner.ID,
		Name:         name,
		Difficulty:   models.DifficultyEasy,
		TimeNeeded:   20 * time.Minute,
		Public:       public,
		Instructions: "Mix and bake.",
	}
	require.NoError(t, db.Create(&recipe).Error)
	return recipe
}

func addEntry(t *testing.T, db *gorm.DB, recipe models.Recipe, ingredient models.Ingredient, quantity float64) models.RecipeIngredient {
	t.Helper()
	entry := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: ingredient.ID, Quantity: quantity}
	require.NoError(t, db.Omit("Ingredient").Create(&entry).Error)
	return entry
}

func setProfile(t *testing.T, db *gorm.DB, recipe models.Recipe, calories, fat, carbs, protein float64) {
	t.Helper()
	profile := models.NutritionProfile{RecipeID: recipe.ID, Calories: calories, Fat: fat, Carbs: carbs, Protein: protein}
	require.NoError(t, db.Create(&profile).Error)
}

func createPlan(t *testing.T, db *gorm.DB, owner models.User, name string) models.MealPlan {
	t.Helper()
	plan := models.MealPlan{UserID: owner.ID, Name: name}
	require.NoError(t, db.Create(&plan).Error)
	return plan
}

func schedule(t *testing.T, db *gorm.DB, plan models.MealPlan, recipe models.Recipe, day models.Weekday) models.MealPlanItem {
	t.Helper()
	item := models.MealPlanItem{MealPlanID: plan.ID, RecipeID: recipe.ID, Weekday: day}
	require.NoError(t, db.Select("MealPlanID", "RecipeID", "Weekday").Create(&item).Error)
	return item
}
